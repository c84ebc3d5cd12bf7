package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"red-envelope/internal/domain/entity"
)

// errorStatus maps domain errors to an HTTP status and response code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidEnvelopeID),
		errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, entity.ErrInvalidTxHash),
		errors.Is(err, entity.ErrInvalidPhase):
		return fiber.StatusBadRequest, entity.CodeBadRequest
	case errors.Is(err, entity.ErrEnvelopeNotFound),
		errors.Is(err, entity.ErrTransactionNotFound):
		return fiber.StatusNotFound, entity.CodeNotFound
	default:
		return fiber.StatusInternalServerError, entity.CodeInternal
	}
}

func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	return c.Status(status).JSON(entity.NewErrorResponse(code, err.Error()))
}
