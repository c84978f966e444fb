package httpapi

import (
	"errors"
	"net/http"

	"github.com/ThilinaWibushitha/Doctor-Channeling-System/internal/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope общий формат всех ответов API
type Envelope struct {
	Data  interface{} `json:"data,omitempty"`
	Error *ErrorBody  `json:"error,omitempty"`
	Meta  *Meta       `json:"meta,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type Meta struct {
	Warnings []string `json:"warnings,omitempty"`
}

const codeInternal = "internal_error"

var kindStatus = map[model.ErrorKind]int{
	model.KindInvalidInput:      http.StatusBadRequest,
	model.KindNotFound:          http.StatusNotFound,
	model.KindSlotUnavailable:   http.StatusConflict,
	model.KindConflict:          http.StatusConflict,
	model.KindInvalidTransition: http.StatusUnprocessableEntity,
}

func respond(c *gin.Context, status int, data interface{}, warnings []string) {
	c.Header("Cache-Control", "no-store")
	env := Envelope{Data: data}
	if len(warnings) > 0 {
		env.Meta = &Meta{Warnings: warnings}
	}
	c.JSON(status, env)
}

// respondError отдаёт доменные ошибки как есть, остальные прячет за 500
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	c.Header("Cache-Control", "no-store")

	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		status, ok := kindStatus[domainErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, Envelope{Error: &ErrorBody{Code: string(domainErr.Kind), Message: domainErr.Message}})
		return
	}

	logger.Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, Envelope{Error: &ErrorBody{Code: codeInternal, Message: "internal server error"}})
}

func badRequest(c *gin.Context, logger *zap.Logger, format string, args ...interface{}) {
	respondError(c, logger, model.InvalidInput(format, args...))
}
