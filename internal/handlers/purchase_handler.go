package handlers

import (
	"purchaselog/internal/models"
	"purchaselog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PurchaseHandler handles HTTP requests for purchases.
type PurchaseHandler struct {
	service  *services.PurchaseService
	validate *validator.Validate
}

// NewPurchaseHandler creates a new PurchaseHandler.
func NewPurchaseHandler(service *services.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{
		service:  service,
		validate: newValidator(),
	}
}

// RegisterRoutes registers the purchase routes with the Fiber app.
func (h *PurchaseHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/purchases/", h.HandleCreatePurchase)
	router.Get("/users/:user_id/purchases/", h.HandleListUserPurchases)
}

// CreatePurchaseRequest represents the request body for recording a purchase.
// There is no timestamp field; the server assigns it. Price and quantity are
// pointers so that an explicit zero is told apart from a missing field.
type CreatePurchaseRequest struct {
	UserID   uint     `json:"user_id" validate:"required"`
	SkuName  string   `json:"sku_name" validate:"required,max=255"`
	Price    *float64 `json:"price" validate:"required,gte=0"`
	Quantity *int     `json:"quantity" validate:"required"`
}

// HandleCreatePurchase records a purchase and returns the stored record.
func (h *PurchaseHandler) HandleCreatePurchase(c *fiber.Ctx) error {
	var req CreatePurchaseRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	purchase := models.Purchase{
		UserID:   req.UserID,
		SkuName:  req.SkuName,
		Price:    *req.Price,
		Quantity: *req.Quantity,
	}
	if err := h.service.RecordPurchase(c.UserContext(), &purchase); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(purchase)
}

// HandleListUserPurchases returns the user's most recent purchases, newest first.
func (h *PurchaseHandler) HandleListUserPurchases(c *fiber.Ctx) error {
	userID, err := c.ParamsInt("user_id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "user_id must be an integer",
			"code":    CodeValidation,
			"error":   err.Error(),
		})
	}
	// IDs start at 1, so no user can own purchases here.
	if userID <= 0 {
		return c.JSON([]models.Purchase{})
	}

	purchases, err := h.service.ListRecentPurchases(c.UserContext(), uint(userID))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(purchases)
}
