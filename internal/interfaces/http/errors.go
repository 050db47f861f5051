package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// writeError traduce un error de dominio a status HTTP + dto.ErrorResponse.
// Stock insuficiente (409) y almacén caído (503, reintentable) quedan distinguibles.
func writeError(c *fiber.Ctx, err error) error {
	code := domain.Code(err)
	status := fiber.StatusInternalServerError
	msg := "error interno"
	switch code {
	case domain.CodeInvalidInput:
		status, msg = fiber.StatusBadRequest, err.Error()
	case domain.CodeNotFound:
		status, msg = fiber.StatusNotFound, err.Error()
	case domain.CodeInsufficientStock:
		status, msg = fiber.StatusConflict, err.Error()
	case domain.CodeDuplicate:
		status, msg = fiber.StatusConflict, err.Error()
	case domain.CodeConflict:
		status, msg = fiber.StatusConflict, "escrituras concurrentes sobre el mismo recurso; reintente"
		c.Set(fiber.HeaderRetryAfter, "1")
	case domain.CodeStoreUnavailable:
		status, msg = fiber.StatusServiceUnavailable, "almacén de datos no disponible; reintente"
		c.Set(fiber.HeaderRetryAfter, "1")
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg, Retryable: domain.Retryable(err)})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: domain.CodeInvalidInput, Message: "cuerpo inválido"})
}

// isNotFound atajo para handlers que devuelven resultado junto con error.
func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
