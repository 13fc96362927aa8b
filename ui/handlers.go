package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"moodlens/adapters/excel"
	"moodlens/app"
	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/internal/errors"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleHealth(c *gin.Context) {
	ds := s.svc.Dataset()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"records":     ds.Len(),
		"fingerprint": core.Hash(ds.Fingerprint()).Short(),
	})
}

func (s *Server) handleSchema(c *gin.Context) {
	c.JSON(http.StatusOK, s.svc.Overview())
}

func (s *Server) handleQuery(c *gin.Context) {
	var req app.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if s.notModified(c, req) {
		return
	}
	res, err := s.svc.Table(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleStats(c *gin.Context) {
	var req app.StatsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if s.notModified(c, req) {
		return
	}
	res, err := s.svc.Stats(c.Request.Context(), req)
	if err != nil {
		if res != nil {
			s.respondError(c, err, &res.Counts)
			return
		}
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleTrends(c *gin.Context) {
	var req app.TrendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if s.notModified(c, req) {
		return
	}
	res, err := s.svc.Trends(c.Request.Context(), req)
	if err != nil {
		if res != nil {
			s.respondError(c, err, &res.Counts)
			return
		}
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handlePersonas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"personas": s.svc.Personas()})
}

func (s *Server) handlePersona(c *gin.Context) {
	cluster, err := strconv.Atoi(c.Param("cluster"))
	if err != nil {
		s.badRequest(c, fmt.Errorf("cluster must be an integer, got %q", c.Param("cluster")))
		return
	}
	p, err := s.svc.Persona(cluster)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleModels(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": s.svc.Models()})
}

// recordInput is a record as posted by a client; the date is optional and
// uses the calendar layout instead of a timestamp
type recordInput struct {
	Date                      *core.Date         `json:"date,omitempty"`
	Age                       int                `json:"age"`
	Gender                    record.Gender      `json:"gender"`
	Platform                  record.Platform    `json:"platform"`
	DailyScreenTimeMin        int                `json:"daily_screen_time_min"`
	SocialMediaTimeMin        int                `json:"social_media_time_min"`
	SleepHours                float64            `json:"sleep_hours"`
	PhysicalActivityMin       int                `json:"physical_activity_min"`
	NegativeInteractionsCount int                `json:"negative_interactions_count"`
	PositiveInteractionsCount int                `json:"positive_interactions_count"`
	AnxietyLevel              int                `json:"anxiety_level"`
	StressLevel               int                `json:"stress_level"`
	MoodLevel                 int                `json:"mood_level"`
	MentalState               record.MentalState `json:"mental_state"`
}

func (in recordInput) toRecord() *record.Record {
	r := &record.Record{
		Age:                       in.Age,
		Gender:                    in.Gender,
		Platform:                  in.Platform,
		DailyScreenTimeMin:        in.DailyScreenTimeMin,
		SocialMediaTimeMin:        in.SocialMediaTimeMin,
		SleepHours:                in.SleepHours,
		PhysicalActivityMin:       in.PhysicalActivityMin,
		NegativeInteractionsCount: in.NegativeInteractionsCount,
		PositiveInteractionsCount: in.PositiveInteractionsCount,
		AnxietyLevel:              in.AnxietyLevel,
		StressLevel:               in.StressLevel,
		MoodLevel:                 in.MoodLevel,
		MentalState:               in.MentalState,
	}
	if in.Date != nil {
		r.Date = in.Date.Time()
	}
	return r
}

type predictBody struct {
	Model   string       `json:"model" binding:"required"`
	Record  *recordInput `json:"record,omitempty"`
	Cluster *int         `json:"cluster,omitempty"`
}

func (s *Server) handlePredict(c *gin.Context) {
	var body predictBody
	if err := c.ShouldBindJSON(&body); err != nil {
		s.badRequest(c, err)
		return
	}
	req := app.PredictRequest{Model: body.Model, Cluster: body.Cluster}
	if body.Record != nil {
		req.Record = body.Record.toRecord()
	}
	res, err := s.svc.Predict(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, res)
}

// handleExport streams the filtered, sorted selection as a workbook. An empty
// selection still exports the header row.
func (s *Server) handleExport(c *gin.Context) {
	var req app.TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	view, counts, columns, err := s.svc.Select(req)
	if err != nil {
		s.respondError(c, err, nil)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteRecords(&buf, columns, view.Records()); err != nil {
		s.respondError(c, errors.Wrap(err, "export"), nil)
		return
	}
	s.log.Info("[Export] %s rows, %d columns", counts, len(columns))

	name := fmt.Sprintf("moodlens-%s.xlsx", time.Now().UTC().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handlePageList(c *gin.Context) {
	list := s.pages.List()
	out := make([]gin.H, len(list))
	for i, p := range list {
		out[i] = gin.H{"slug": p.Slug, "title": p.Title, "href": "/pages/" + p.Slug}
	}
	c.JSON(http.StatusOK, gin.H{"pages": out})
}

func (s *Server) handlePage(c *gin.Context) {
	page, ok := s.pages.Get(c.Param("slug"))
	if !ok {
		s.respondError(c, errors.NotFound("page "+c.Param("slug")), nil)
		return
	}
	body, err := s.pages.Render(page)
	if err != nil {
		s.respondError(c, errors.Wrap(err, "render page"), nil)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", body)
}
