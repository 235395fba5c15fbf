package middleware

import (
	"net/http"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type errorBody struct {
	Status  string      `json:"status"`
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// ErrorHandler renders every error as {"status":"error","kind":...,"message":...}.
// Unclassified errors are logged and reported as a generic 500.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	log = log.Named("http")
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := apperr.As(err); ok {
			return c.Status(appErr.HTTPCode()).JSON(errorBody{Status: "error", Kind: appErr.Kind(), Message: appErr.Message()})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && fiberErr.Code < http.StatusInternalServerError {
			return c.Status(fiberErr.Code).JSON(errorBody{Status: "error", Kind: kindForStatus(fiberErr.Code), Message: fiberErr.Message})
		}

		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(errorBody{
			Status:  "error",
			Kind:    apperr.KindInternal,
			Message: "internal server error",
		})
	}
}

func kindForStatus(code int) apperr.Kind {
	switch code {
	case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
		return apperr.KindNotFound
	case fiber.StatusUnauthorized:
		return apperr.KindUnauthorized
	case fiber.StatusForbidden:
		return apperr.KindForbidden
	case fiber.StatusConflict:
		return apperr.KindConflict
	default:
		return apperr.KindValidation
	}
}
