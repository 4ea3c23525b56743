package catalog

import (
	"errors"
	"strconv"
	"time"

	"device-manager/core/logger"
	"device-manager/feature/catalog/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the local catalog.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/customers", h.HandleListCustomers)
	app.Get("/customers/:id", h.HandleGetCustomer)

	types := app.Group("/product-types")
	types.Get("/", h.HandleListProductTypes)
	types.Post("/", h.HandleCreateProductType)
	types.Get("/:id", h.HandleGetProductType)
	types.Put("/:id", h.HandleUpdateProductType)
	types.Delete("/:id", h.HandleDeleteProductType)

	orders := app.Group("/orders")
	orders.Get("/", h.HandleListOrders)
	orders.Post("/", h.HandleAddOrder)
	orders.Get("/:id", h.HandleGetOrder)
	orders.Delete("/:id", h.HandleDeleteOrder)
	orders.Put("/:id/:status", h.HandleSetOrderStatus)
}

// HandleListCustomers returns every customer.
// @Summary List Customers
// @Tags catalog
// @Produce json
// @Success 200 {array} models.Customer
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /customers [get]
func (h *Handler) HandleListCustomers(c *fiber.Ctx) error {
	rows, err := h.service.ListCustomers(c.UserContext())
	if err != nil {
		return h.fail(c, "List customers failed", err)
	}
	return c.JSON(rows)
}

// HandleGetCustomer returns one customer.
// @Summary Get Customer
// @Tags catalog
// @Produce json
// @Param id path int true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} map[string]string "Not Found"
// @Router /customers/{id} [get]
func (h *Handler) HandleGetCustomer(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, err)
	}
	row, err := h.service.GetCustomer(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "Get customer failed", err)
	}
	return c.JSON(row)
}

// HandleListProductTypes returns every product type.
// @Summary List Product Types
// @Tags catalog
// @Produce json
// @Success 200 {array} models.ProductType
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /product-types [get]
func (h *Handler) HandleListProductTypes(c *fiber.Ctx) error {
	rows, err := h.service.ListProductTypes(c.UserContext())
	if err != nil {
		return h.fail(c, "List product types failed", err)
	}
	return c.JSON(rows)
}

// HandleGetProductType returns one product type.
// @Summary Get Product Type
// @Tags catalog
// @Produce json
// @Param id path int true "Product Type ID"
// @Success 200 {object} models.ProductType
// @Failure 404 {object} map[string]string "Not Found"
// @Router /product-types/{id} [get]
func (h *Handler) HandleGetProductType(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, err)
	}
	row, err := h.service.GetProductType(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "Get product type failed", err)
	}
	return c.JSON(row)
}

// HandleCreateProductType adds a product type.
// @Summary Create Product Type
// @Tags catalog
// @Accept json
// @Produce json
// @Param body body models.ProductTypeInput true "Product type"
// @Success 201 {object} models.ProductType
// @Failure 400 {object} map[string]string "Invalid body or name already used"
// @Router /product-types [post]
func (h *Handler) HandleCreateProductType(c *fiber.Ctx) error {
	var in models.ProductTypeInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, errors.New("invalid body"))
	}
	row, err := h.service.CreateProductType(c.UserContext(), in)
	if err != nil {
		return h.fail(c, "Create product type failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

// HandleUpdateProductType replaces a product type.
// @Summary Update Product Type
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Product Type ID"
// @Param body body models.ProductTypeInput true "Product type"
// @Success 200 {object} models.ProductType
// @Failure 400 {object} map[string]string "Invalid body or name already used"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /product-types/{id} [put]
func (h *Handler) HandleUpdateProductType(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, err)
	}
	var in models.ProductTypeInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, errors.New("invalid body"))
	}
	row, err := h.service.UpdateProductType(c.UserContext(), id, in)
	if err != nil {
		return h.fail(c, "Update product type failed", err)
	}
	return c.JSON(row)
}

// HandleDeleteProductType removes a product type without orders.
// @Summary Delete Product Type
// @Tags catalog
// @Param id path int true "Product Type ID"
// @Success 204
// @Failure 400 {object} map[string]string "Still referenced by orders"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /product-types/{id} [delete]
func (h *Handler) HandleDeleteProductType(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.service.DeleteProductType(c.UserContext(), id); err != nil {
		return h.fail(c, "Delete product type failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListOrders returns orders, optionally filtered by customer, product
// type or creation date.
// @Summary List Orders
// @Tags orders
// @Produce json
// @Param customer_id query int false "Customer ID"
// @Param product_type_id query int false "Product Type ID"
// @Param created_from query string false "Created on or after (RFC3339 or YYYY-MM-DD)"
// @Param created_to query string false "Created on or before (RFC3339 or YYYY-MM-DD, whole day)"
// @Success 200 {array} models.ProductOrder
// @Failure 400 {object} map[string]string "Bad Request"
// @Router /orders [get]
func (h *Handler) HandleListOrders(c *fiber.Ctx) error {
	var filter models.OrderFilter
	var err error
	if filter.CustomerID, err = queryID(c, "customer_id"); err != nil {
		return badRequest(c, err)
	}
	if filter.ProductTypeID, err = queryID(c, "product_type_id"); err != nil {
		return badRequest(c, err)
	}
	if filter.CreatedFrom, err = queryTime(c, "created_from", false); err != nil {
		return badRequest(c, err)
	}
	if filter.CreatedTo, err = queryTime(c, "created_to", true); err != nil {
		return badRequest(c, err)
	}
	if !filter.CreatedFrom.IsZero() && !filter.CreatedTo.IsZero() && filter.CreatedFrom.After(filter.CreatedTo) {
		return badRequest(c, errors.New("created_from is after created_to"))
	}

	rows, err := h.service.ListOrders(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, "List orders failed", err)
	}
	return c.JSON(rows)
}

// HandleGetOrder returns one order.
// @Summary Get Order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.ProductOrder
// @Failure 404 {object} map[string]string "Not Found"
// @Router /orders/{id} [get]
func (h *Handler) HandleGetOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, err)
	}
	row, err := h.service.GetOrder(c.UserContext(), id)
	if err != nil {
		return h.fail(c, "Get order failed", err)
	}
	return c.JSON(row)
}

// HandleAddOrder creates an order by hand.
// @Summary Add Order
// @Tags orders
// @Accept json
// @Produce json
// @Param body body models.OrderInput true "Order"
// @Success 201 {object} models.ProductOrder
// @Failure 400 {object} map[string]string "Invalid body, unknown reference or number already used"
// @Router /orders [post]
func (h *Handler) HandleAddOrder(c *fiber.Ctx) error {
	var in models.OrderInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, errors.New("invalid body"))
	}
	row, err := h.service.AddOrder(c.UserContext(), in)
	if err != nil {
		return h.fail(c, "Add order failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(row)
}

// HandleDeleteOrder removes an order.
// @Summary Delete Order
// @Tags orders
// @Param id path int true "Order ID"
// @Success 204
// @Failure 404 {object} map[string]string "Not Found"
// @Router /orders/{id} [delete]
func (h *Handler) HandleDeleteOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, err)
	}
	if err := h.service.DeleteOrder(c.UserContext(), id); err != nil {
		return h.fail(c, "Delete order failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSetOrderStatus records an assembly step (mount, test, ship, activate).
// @Summary Set Order Status
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Param status path string true "Step" Enums(mount, test, ship, activate)
// @Success 200 {object} models.ProductOrder
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 404 {object} map[string]string "Not Found"
// @Router /orders/{id}/{status} [put]
func (h *Handler) HandleSetOrderStatus(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return badRequest(c, err)
	}
	row, err := h.service.SetOrderStatus(c.UserContext(), id, models.Status(c.Params("status")))
	if err != nil {
		return h.fail(c, "Set order status failed", err)
	}
	return c.JSON(row)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrStatusAlreadySet),
		errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrInUse), errors.Is(err, ErrInvalidInput):
		status = fiber.StatusBadRequest
	}

	l := logger.WithRayID(h.service.logger, c)
	if status == fiber.StatusInternalServerError {
		l.Error(msg, zap.Error(err))
	} else {
		l.Warn(msg, zap.Error(err))
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func queryID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return uint(id), nil
}

// queryTime parses an RFC3339 timestamp or a YYYY-MM-DD date. A date given as
// an upper bound covers the whole day.
func queryTime(c *fiber.Ctx, name string, endOfDay bool) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid " + name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
