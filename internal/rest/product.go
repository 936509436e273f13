package rest

import (
	"context"
	"net/http"
	"time"

	"garmentFactory/domain"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ProductService interface {
	GetAllProducts(ctx context.Context, category, search string) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id uint) (domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, product *domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
}

type ProductHandler struct {
	productService ProductService
	validator      *validator.Validate
	timeout        time.Duration
}

func NewProductHandler(productService ProductService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		validator:      validator.New(),
		timeout:        timeout,
	}
}

type ProductRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	Category    string  `json:"category" validate:"required,oneof=product fabric"`
	Color       string  `json:"color"`
	FabricType  string  `json:"fabricType"`
	Image       string  `json:"image"`
}

func (r ProductRequest) toProduct(id uint) *domain.Product {
	return &domain.Product{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		Category:    domain.ProductCategory(r.Category),
		Color:       r.Color,
		FabricType:  r.FabricType,
		Image:       r.Image,
	}
}

func (h *ProductHandler) GetAllProducts(c echo.Context) error {
	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	products, err := h.productService.GetAllProducts(ctx, c.QueryParam("category"), c.QueryParam("search"))
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"products": products,
	})
}

func (h *ProductHandler) GetProductByID(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	product, err := h.productService.GetProductByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "", map[string]any{
		"product": product,
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	product, err := h.productService.CreateProduct(ctx, req.toProduct(0))
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusCreated, "Product created", map[string]any{
		"product": product,
	})
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := h.validator.Struct(&req); err != nil {
		return validationError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	product, err := h.productService.UpdateProduct(ctx, req.toProduct(id))
	if err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Product updated", map[string]any{
		"product": product,
	})
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := withTimeout(c, h.timeout)
	defer cancel()

	if err := h.productService.DeleteProduct(ctx, id); err != nil {
		return writeError(c, err)
	}

	return ok(c, http.StatusOK, "Product deleted", map[string]any{
		"productId": id,
	})
}
