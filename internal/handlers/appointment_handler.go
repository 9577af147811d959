package handlers

import (
	"petshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AppointmentHandler handles booking routes.
type AppointmentHandler struct {
	service  *services.AppointmentService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAppointmentHandler(service *services.AppointmentService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *AppointmentHandler) RegisterRoutes(router fiber.Router, auth, staff fiber.Handler) {
	appointmentRoutes := router.Group("/appointments", auth)
	appointmentRoutes.Get("/", h.HandleGetAppointments)
	appointmentRoutes.Post("/", h.HandleCreateAppointments)
	appointmentRoutes.Put("/:id/cancel", h.HandleCancelAppointment)
	appointmentRoutes.Patch("/:id/status", staff, h.HandleTransitionStatus)
}

type CreateAppointmentsRequest struct {
	PetIDs          []uint `json:"pet_ids" validate:"required,min=1,dive,gt=0"`
	ServiceID       uint   `json:"service_id" validate:"required"`
	AppointmentDate string `json:"appointment_date" validate:"required"`
	AppointmentTime string `json:"appointment_time" validate:"required"`
	Notes           string `json:"notes"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *AppointmentHandler) HandleGetAppointments(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	list, err := h.service.GetAppointmentsByUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve appointments")
	}
	return c.JSON(list)
}

// HandleCreateAppointments books one service for several pets at once.
func (h *AppointmentHandler) HandleCreateAppointments(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	var req CreateAppointmentsRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}

	created, err := h.service.CreateAppointments(c.UserContext(), userID, services.CreateAppointmentsInput{
		PetIDs:    req.PetIDs,
		ServiceID: req.ServiceID,
		Date:      req.AppointmentDate,
		Time:      req.AppointmentTime,
		Notes:     req.Notes,
	})
	if err != nil {
		return respondError(c, h.logger, err, "Could not book appointments")
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleCancelAppointment cancels the booking the appointment belongs to.
func (h *AppointmentHandler) HandleCancelAppointment(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid appointment id")
	}
	cancelled, err := h.service.CancelAppointment(c.UserContext(), id, userID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not cancel appointment")
	}
	return c.JSON(cancelled)
}

func (h *AppointmentHandler) HandleTransitionStatus(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid appointment id")
	}
	var req UpdateAppointmentStatusRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	updated, err := h.service.TransitionStatus(c.UserContext(), userID, id, req.Status)
	if err != nil {
		return respondError(c, h.logger, err, "Could not update appointment status")
	}
	return c.JSON(updated)
}
