package api

import (
	"github.com/gofiber/fiber/v2"
	account "github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// ErrorBody is the JSON error payload.
type ErrorBody struct {
	Message  string `json:"message"`
	TextCode string `json:"code,omitempty"`
}

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Meta  any        `json:"meta,omitempty"`
	Error *ErrorBody `json:"error,omitempty"`
}

// StatusFor maps an error category to an HTTP status.
func StatusFor(err error) int {
	var richErr *goerrors.Error
	if err == nil || !goerrors.As(err, &richErr) {
		return fiber.StatusBadGateway
	}

	switch richErr.Category {
	case goerrors.CategoryValidation:
		return fiber.StatusBadRequest
	case goerrors.CategoryAuth:
		return fiber.StatusUnauthorized
	case goerrors.CategoryNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadGateway
	}
}

func respond[T any](c router.Context, res account.Result[T]) error {
	if res.IsError() {
		return writeError(c, res.Err, res.Message)
	}
	return c.JSON(fiber.StatusOK, envelope{Data: res.Value})
}

func writeError(c router.Context, err error, message string) error {
	body := &ErrorBody{Message: message}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		body.TextCode = richErr.TextCode
		if body.Message == "" {
			body.Message = richErr.Message
		}
	}
	if body.Message == "" && err != nil {
		body.Message = err.Error()
	}

	return c.JSON(StatusFor(err), envelope{Error: body})
}

func badRequest(c router.Context, err error) error {
	return writeError(c,
		goerrors.Wrap(err, goerrors.CategoryValidation, "invalid request payload").
			WithTextCode(account.TextCodeValidation),
		"",
	)
}
