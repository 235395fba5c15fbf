package handlers

import (
	"fmt"
	"strings"

	"github.com/anjiri1684/tutor_marketplace/apperr"
	"github.com/anjiri1684/tutor_marketplace/middleware"
	"github.com/anjiri1684/tutor_marketplace/payments"
	"github.com/anjiri1684/tutor_marketplace/repository"
	"github.com/anjiri1684/tutor_marketplace/services"
	"github.com/anjiri1684/tutor_marketplace/websocket"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Deps struct {
	Store      *repository.Store
	Auth       *services.AuthService
	Profiles   *services.ProfileService
	Ledger     *services.Ledger
	Dashboard  *services.DashboardService
	Reconciler *services.Reconciler
	Processor  payments.Processor
	Hub        *websocket.Hub
	Log        *zap.Logger
}

// Handler holds the services every HTTP endpoint works through.
type Handler struct {
	store      *repository.Store
	auth       *services.AuthService
	profiles   *services.ProfileService
	ledger     *services.Ledger
	dashboard  *services.DashboardService
	reconciler *services.Reconciler
	processor  payments.Processor
	hub        *websocket.Hub
	validate   *validator.Validate
	log        *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		store:      d.Store,
		auth:       d.Auth,
		profiles:   d.Profiles,
		ledger:     d.Ledger,
		dashboard:  d.Dashboard,
		reconciler: d.Reconciler,
		processor:  d.Processor,
		hub:        d.Hub,
		validate:   validator.New(),
		log:        d.Log.Named("handlers"),
	}
}

// bind parses the JSON body into out and runs its validate tags.
func (h *Handler) bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.Validation("cannot parse request body")
	}
	if err := h.validate.Struct(out); err != nil {
		return apperr.Validation("%s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperr.Validation("%s must be a valid id", name)
	}
	return id, nil
}

func (h *Handler) actingStudent(c *fiber.Ctx) (uuid.UUID, error) {
	return h.profiles.StudentIDForUser(c.UserContext(), middleware.CurrentUser(c).UserID)
}

func (h *Handler) actingTutor(c *fiber.Ctx) (uuid.UUID, error) {
	return h.profiles.TutorIDForUser(c.UserContext(), middleware.CurrentUser(c).UserID)
}

// Health reports whether the database is reachable.
func (h *Handler) Health(c *fiber.Ctx) error {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
