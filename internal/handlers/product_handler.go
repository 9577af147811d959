package handlers

import (
	"petshop/internal/models"
	"petshop/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductHandler handles HTTP requests for the catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes mounts public reads and staff-only writes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, auth, staff fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/search", h.HandleSearchProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", auth, staff, h.HandleCreateProduct)
	productRoutes.Put("/:id", auth, staff, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", auth, staff, h.HandleDeleteProduct)
}

type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=255"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"image_url" validate:"omitempty,max=512"`
	Category    string          `json:"category" validate:"required,max=64"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Description string          `json:"description"`
	Brand       string          `json:"brand" validate:"omitempty,max=128"`
}

func (r ProductRequest) toModel() models.Product {
	return models.Product{
		Name:        r.Name,
		Price:       r.Price,
		ImageURL:    r.ImageURL,
		Category:    r.Category,
		Stock:       r.Stock,
		Description: r.Description,
		Brand:       r.Brand,
	}
}

// HandleGetProducts lists the catalog, narrowed by ?category= when given.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	var (
		products []models.Product
		err      error
	)
	if category := c.Query("category"); category != "" {
		products, err = h.service.GetProductsByCategory(c.UserContext(), category)
	} else {
		products, err = h.service.GetAllProducts(c.UserContext())
	}
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleSearchProducts(c *fiber.Ctx) error {
	products, err := h.service.SearchProducts(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, h.logger, err, "Could not search products")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid product id")
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	product := req.toModel()
	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, h.logger, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid product id")
	}
	var req ProductRequest
	if ok, err := bind(c, h.validate, &req); !ok {
		return err
	}
	product := req.toModel()
	product.ID = id
	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, h.logger, err, "Could not update product")
	}
	updated, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, err, "Could not retrieve product")
	}
	return c.JSON(updated)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, err, "Invalid product id")
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
