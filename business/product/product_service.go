package product

import (
	"context"
	"fmt"
	"strings"

	"garmentFactory/domain"
	"garmentFactory/pkg/logger"
)

// ProductRepository contract interface
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (domain.Product, error)
	FindAll(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uint) error
}

type productService struct {
	productRepo ProductRepository
}

func NewProductService(productRepo ProductRepository) *productService {
	return &productService{
		productRepo: productRepo,
	}
}

func (s *productService) GetAllProducts(ctx context.Context, category, search string) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	filter := domain.ProductFilter{Search: search}
	if category != "" {
		c, ok := domain.ParseProductCategory(category)
		if !ok {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, category)
		}
		filter.Category = c
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		logger.Error("Failed to find all product", err)
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id uint) (domain.Product, error) {
	if id == 0 {
		return domain.Product{}, fmt.Errorf("%w: invalid product id", domain.ErrValidation)
	}

	return s.productRepo.FindByID(ctx, id)
}

// normalize checks a product and clears fabric-only fields on garments.
func normalize(product *domain.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return fmt.Errorf("%w: product name is required", domain.ErrValidation)
	}

	category, ok := domain.ParseProductCategory(string(product.Category))
	if !ok {
		return fmt.Errorf("%w: category must be product or fabric", domain.ErrValidation)
	}
	product.Category = category

	if product.Price <= 0 {
		return fmt.Errorf("%w: price must be greater than 0", domain.ErrValidation)
	}

	if product.Quantity < 0 {
		return fmt.Errorf("%w: quantity cannot be negative", domain.ErrValidation)
	}

	if product.Category == domain.CategoryProduct {
		product.FabricType = ""
	}

	return nil
}

func (s *productService) CreateProduct(ctx context.Context, product *domain.Product) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("context error: %w", err)
	}

	if err := normalize(product); err != nil {
		logger.Warn("Invalid product data", err)
		return domain.Product{}, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		logger.Error("failed to create new product", err)
		return domain.Product{}, err
	}

	logger.Info("product created", "product_id", product.ID, "category", product.Category)
	return *product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, product *domain.Product) (domain.Product, error) {
	if product.ID == 0 {
		return domain.Product{}, fmt.Errorf("%w: product ID is required", domain.ErrValidation)
	}

	if err := normalize(product); err != nil {
		logger.Warn("Invalid product data", err)
		return domain.Product{}, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		logger.Error("failed to update product", err)
		return domain.Product{}, err
	}

	return s.productRepo.FindByID(ctx, product.ID)
}

func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if id == 0 {
		return fmt.Errorf("%w: invalid product id", domain.ErrValidation)
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		logger.Error("failed to delete product", err)
		return err
	}

	logger.Info("product deleted", "product_id", id)
	return nil
}
