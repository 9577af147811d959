package handlers

import (
	"petshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PetHandler serves the caller's pets and the care-service list.
type PetHandler struct {
	service  *services.PetService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewPetHandler(service *services.PetService, logger *zap.Logger) *PetHandler {
	return &PetHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *PetHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	router.Get("/services", h.HandleListServices)

	petRoutes := router.Group("/pets", auth)
	petRoutes.Get("/", h.HandleListPets)
	petRoutes.Post("/", h.HandleCreatePet)
	petRoutes.Get("/:id", h.HandleGetPet)
	petRoutes.Put("/:id", h.HandleUpdatePet)
	petRoutes.Delete("/:id", h.HandleDeletePet)
}

// CreatePetRequest is also the body of an update; a blank image_url keeps
// the stored image.
type CreatePetRequest struct {
	Name     string  `json:"name" validate:"required,max=128"`
	Species  string  `json:"species" validate:"required"`
	Breed    string  `json:"breed" validate:"omitempty,max=128"`
	Age      int     `json:"age" validate:"gte=0"`
	Weight   float64 `json:"weight" validate:"gte=0"`
	Gender   string  `json:"gender"`
	Notes    string  `json:"notes"`
	ImageURL string  `json:"image_url" validate:"omitempty,max=512"`
}

func (r CreatePetRequest) toInput() services.CreatePetInput {
	return services.CreatePetInput{
		Name:     r.Name,
		Species:  r.Species,
		Breed:    r.Breed,
		Age:      r.Age,
		Weight:   r.Weight,
		Gender:   r.Gender,
		Notes:    r.Notes,
		ImageURL: r.ImageURL,
	}
}

func (h *PetHandler) HandleListPets(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	pets, err := h.service.ListPets(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve pets")
	}
	return c.JSON(pets)
}

func (h *PetHandler) HandleCreatePet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	var req CreatePetRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	pet, err := h.service.CreatePet(c.UserContext(), userID, req.toInput())
	if err != nil {
		return respondError(c, h.logger, err, "Could not create pet")
	}
	return c.Status(fiber.StatusCreated).JSON(pet)
}

func (h *PetHandler) HandleGetPet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	petID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid pet id")
	}
	pet, err := h.service.GetPet(c.UserContext(), petID, userID)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve pet")
	}
	return c.JSON(pet)
}

func (h *PetHandler) HandleUpdatePet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	petID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid pet id")
	}
	var req CreatePetRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	pet, err := h.service.UpdatePet(c.UserContext(), petID, userID, req.toInput())
	if err != nil {
		return respondError(c, h.logger, err, "Could not update pet")
	}
	return c.JSON(pet)
}

func (h *PetHandler) HandleDeletePet(c *fiber.Ctx) error {
	userID, err := currentUser(c)
	if err != nil {
		return respondError(c, h.logger, err, "Not authenticated")
	}
	petID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid pet id")
	}
	if err := h.service.DeletePet(c.UserContext(), petID, userID); err != nil {
		return respondError(c, h.logger, err, "Could not delete pet")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PetHandler) HandleListServices(c *fiber.Ctx) error {
	list, err := h.service.ListCareServices(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve services")
	}
	return c.JSON(list)
}
