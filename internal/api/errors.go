package api

import (
	"errors"
	"log"

	"calorie-buddy/internal/food"
	"calorie-buddy/internal/llm"
	"calorie-buddy/internal/planner"
	"calorie-buddy/internal/profile"
	"calorie-buddy/internal/shared"

	"github.com/gofiber/fiber/v3"
)

// AppError carries the HTTP status a failure should be reported with.
type AppError struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewAppError(statusCode int, message string, cause error) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Cause: cause}
}

// fromDomain maps service errors onto HTTP statuses.
func fromDomain(err error) error {
	switch {
	case errors.Is(err, profile.ErrNotFound):
		return NewAppError(fiber.StatusNotFound, "User not found", err)
	case errors.Is(err, food.ErrNotImage):
		return NewAppError(fiber.StatusBadRequest, "File must be an image", err)
	case errors.Is(err, shared.ErrInvalidDate):
		return NewAppError(fiber.StatusBadRequest, err.Error(), err)
	case errors.Is(err, profile.ErrInvalidProfile), errors.Is(err, food.ErrInvalidEntry):
		return NewAppError(fiber.StatusUnprocessableEntity, err.Error(), err)
	case errors.Is(err, planner.ErrMalformedPlan):
		return NewAppError(fiber.StatusInternalServerError, "Failed to parse meal plan response", err)
	case errors.Is(err, llm.ErrNotConfigured):
		return NewAppError(fiber.StatusInternalServerError, err.Error(), err)
	default:
		return NewAppError(fiber.StatusInternalServerError, err.Error(), err)
	}
}

type ErrorMiddleware struct{}

func NewErrorMiddleware() *ErrorMiddleware {
	return &ErrorMiddleware{}
}

// Middleware converts returned errors and panics into ErrorResponse bodies.
func (m *ErrorMiddleware) Middleware() fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("panic recovered: %v", r)
				err = writeError(c, fiber.StatusInternalServerError, MessageInternalServerError)
			}
		}()

		err = c.Next()
		if err == nil {
			return nil
		}

		status, msg := normalizeError(err)
		if status >= 500 {
			log.Printf("Request %s %s failed: %v", c.Method(), c.Path(), err)
		}
		return writeError(c, status, msg)
	}
}

func normalizeError(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.StatusCode <= 0 {
			return fiber.StatusInternalServerError, MessageInternalServerError
		}
		msg := appErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(appErr.StatusCode)
		}
		return appErr.StatusCode, msg
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status := fiberErr.Code
		if status <= 0 {
			status = fiber.StatusInternalServerError
		}
		msg := fiberErr.Message
		if msg == "" {
			msg = defaultMessageForStatus(status)
		}
		return status, msg
	}

	return fiber.StatusInternalServerError, err.Error()
}
