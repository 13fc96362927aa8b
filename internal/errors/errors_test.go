package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"moodlens/domain/core"
)

func TestGetCode_FromDomainSentinels(t *testing.T) {
	assert.Equal(t, CodeInsufficientData, GetCode(core.NewInsufficientDataError("x", 0, 1)))
	assert.Equal(t, CodeInvalidInput, GetCode(core.NewConfigError("bins", "too many")))
	assert.Equal(t, CodeSchemaMismatch, GetCode(core.NewUnknownFieldError("x")))
	assert.Equal(t, CodeNotFound, GetCode(fmt.Errorf("lookup: %w", core.ErrModelNotFound)))
	assert.Equal(t, CodeInternalError, GetCode(stderrors.New("boom")))
}

func TestWrap_KeepsChain(t *testing.T) {
	err := Wrap(core.NewConfigError("rolling_window", "out of range"), "resample failed")
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, core.IsConfigError(err))
	assert.Contains(t, err.Error(), "resample failed: ")

	outer := Wrapf(LoadFailed("dataset", stderrors.New("no such file")), "startup %d", 1)
	assert.Equal(t, CodeLoadFailed, GetCode(outer))
	assert.True(t, IsAppError(outer))
	assert.Nil(t, Wrap(nil, "x"))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, HTTPStatus(core.ErrInsufficientData))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(core.NewUnknownFieldError("x")))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(core.ErrPersonaNotFound))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ExternalServiceError("model", stderrors.New("down"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(stderrors.New("boom")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(WithCode(CodeValidationError, stderrors.New("bad"))))
}
