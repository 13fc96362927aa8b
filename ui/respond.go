package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"moodlens/domain/core"
	"moodlens/internal/errors"
	"moodlens/internal/filter"
)

// errorBody is the JSON shape of every failed API call
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// respondError writes err with the status its code maps to. Insufficient data
// is not a failure: it answers 200 with no_data set and the counts line, so
// the page can show "no data for this selection".
func (s *Server) respondError(c *gin.Context, err error, counts *filter.Counts) {
	code := errors.GetCode(err)
	if code == errors.CodeInsufficientData {
		body := gin.H{"no_data": true, "message": err.Error()}
		if counts != nil {
			body["counts"] = counts
		}
		c.JSON(http.StatusOK, body)
		return
	}

	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("[API] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": errorBody{
		Code:      code,
		Message:   err.Error(),
		RequestID: c.GetString(requestIDKey),
	}})
}

// badRequest reports a body that did not bind
func (s *Server) badRequest(c *gin.Context, err error) {
	s.respondError(c, errors.InvalidInput(err.Error()), nil)
}

// notModified sets the ETag for a request over the loaded dataset and reports
// whether the caller already holds that response
func (s *Server) notModified(c *gin.Context, req interface{}) bool {
	hash, err := core.ComputeRequestHash(s.svc.Dataset().Fingerprint(), req)
	if err != nil {
		return false
	}
	etag := `"` + core.Hash(hash).Short() + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
