package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mkwawa-heritage/marketplace-api/internal/domain"
)

const (
	KindValidation   = "validation"
	KindNotFound     = "not_found"
	KindBidTooLow    = "bid_too_low"
	KindUnauthorized = "unauthorized"
	KindRateLimited  = "rate_limited"
	KindInternal     = "internal"
)

// Err is the JSON body of every failed request.
type Err struct {
	HTTPStatusCode int    `json:"-"`
	StatusText     string `json:"status_text"`
	ErrorMsg       string `json:"error,omitempty"`
	Kind           string `json:"kind"`
	Floor          string `json:"floor,omitempty"`
	RetryAfter     int    `json:"retry_after,omitempty"`

	Err error `json:"-"`
}

func (e *Err) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.ErrorMsg
}

func RenderErr(ctx *gin.Context, e *Err) {
	if e.HTTPStatusCode >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(e.Err),
		)
	}

	ctx.AbortWithStatusJSON(e.HTTPStatusCode, e)
}

func ErrBadRequest(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Bad request",
		Kind:           KindValidation,
		ErrorMsg:       err.Error(),
		Err:            err,
	}
}

func ErrNotFound(resource, key string, value any) *Err {
	return &Err{
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Resource not found",
		Kind:           KindNotFound,
		ErrorMsg:       fmt.Sprintf("%v with %v=%v not found", resource, key, value),
	}
}

func ErrWrongCredentials(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Wrong credentials",
		Kind:           KindUnauthorized,
		ErrorMsg:       "email or password is incorrect",
		Err:            err,
	}
}

func ErrUnauthorized(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusUnauthorized,
		StatusText:     "Unauthorized",
		Kind:           KindUnauthorized,
		ErrorMsg:       err.Error(),
		Err:            err,
	}
}

func ErrBidTooLow(e *domain.BidTooLowError) *Err {
	return &Err{
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Bid too low",
		Kind:           KindBidTooLow,
		ErrorMsg:       e.Error(),
		Floor:          e.Floor.StringFixed(2),
		Err:            e,
	}
}

func ErrTooManyRequests(retryAfter int) *Err {
	return &Err{
		HTTPStatusCode: http.StatusTooManyRequests,
		StatusText:     "Too many requests",
		Kind:           KindRateLimited,
		ErrorMsg:       "rate limit exceeded",
		RetryAfter:     retryAfter,
	}
}

// ErrInternalServerError hides err from the client; RenderErr logs it.
func ErrInternalServerError(err error) *Err {
	return &Err{
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error",
		Kind:           KindInternal,
		ErrorMsg:       "something went wrong",
		Err:            err,
	}
}

// FromDomain maps a service error onto its HTTP rendering.
func FromDomain(err error) *Err {
	var tooLow *domain.BidTooLowError
	switch {
	case errors.As(err, &tooLow):
		return ErrBidTooLow(tooLow)
	case errors.Is(err, domain.ErrValidation):
		return &Err{
			HTTPStatusCode: http.StatusBadRequest,
			StatusText:     "Bad request",
			Kind:           KindValidation,
			ErrorMsg:       innermost(err),
			Err:            err,
		}
	case errors.Is(err, domain.ErrNotFound):
		return &Err{
			HTTPStatusCode: http.StatusNotFound,
			StatusText:     "Resource not found",
			Kind:           KindNotFound,
			ErrorMsg:       innermost(err),
			Err:            err,
		}
	}

	return ErrInternalServerError(err)
}

// innermost drops the "caller -> callee" wrapping prefixes from err's text.
func innermost(err error) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, " -> "); i >= 0 {
		return msg[i+len(" -> "):]
	}
	return msg
}
