package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/perecederos-api/internal/application/dto"
	"github.com/jhoicas/perecederos-api/internal/domain"
)

// LocalError guarda el error interno para que RequestLogger lo registre.
const LocalError = "error"

// writeError traduce errores de dominio a respuestas HTTP.
func writeError(c *fiber.Ctx, err error) error {
	var balErr *domain.InsufficientBatchBalanceError
	if errors.As(err, &balErr) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:    "INSUFFICIENT_BATCH_BALANCE",
			Message: balErr.Error(),
			Details: dto.InsufficientBalanceDetails{
				BatchID:     balErr.BatchID,
				BatchNumber: balErr.BatchNumber,
				Available:   balErr.Available,
				Requested:   balErr.Requested,
			},
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidQuantity):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnknownProduct), errors.Is(err, domain.ErrUnknownBatch), errors.Is(err, domain.ErrNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateCode):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrReferencedEntity):
		status, code = fiber.StatusConflict, "REFERENCED"
	case errors.Is(err, domain.ErrAlreadyReceived):
		status, code = fiber.StatusConflict, "ALREADY_RECEIVED"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrEmptySelection):
		status, code = fiber.StatusConflict, "EMPTY_SELECTION"
	case errors.Is(err, domain.ErrMissingReason):
		status, code = fiber.StatusUnprocessableEntity, "MISSING_REASON"
	case errors.Is(err, domain.ErrNegativeStock):
		status, code = fiber.StatusInternalServerError, "STOCK_INCONSISTENCY"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		c.Locals(LocalError, err.Error())
		if code == "INTERNAL" {
			msg = "error interno"
		}
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
