package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/shopspring/decimal"
)

// ProductPage is one page of a product listing.
type ProductPage struct {
	Items  []models.Product `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// ProductInput carries the editable fields of a product.
type ProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	DiscountPrice decimal.NullDecimal
	IsOffer       bool
	Stock         int
	IsActive      bool
	ImageURL      string
	CategoryID    *string
}

// CatalogService handles business logic related to products and categories.
type CatalogService struct {
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(products repositories.ProductRepository, categories repositories.CategoryRepository) *CatalogService {
	return &CatalogService{
		products:   products,
		categories: categories,
	}
}

// ListProducts returns a page of active products.
func (s *CatalogService) ListProducts(ctx context.Context, q repositories.ProductQuery) (*ProductPage, error) {
	q.IncludeInactive = false
	return s.listProducts(ctx, q)
}

// AdminListProducts returns a page of products including inactive ones.
func (s *CatalogService) AdminListProducts(ctx context.Context, requester *models.Principal, q repositories.ProductQuery) (*ProductPage, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	q.IncludeInactive = true
	return s.listProducts(ctx, q)
}

func (s *CatalogService) listProducts(ctx context.Context, q repositories.ProductQuery) (*ProductPage, error) {
	if q.MinPrice.Valid && q.MaxPrice.Valid && q.MinPrice.Decimal.GreaterThan(q.MaxPrice.Decimal) {
		return nil, fmt.Errorf("%w: min price is greater than max price", ErrInvalidInput)
	}
	items, total, err := s.products.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	limit, offset := repositories.NormalizePage(q.Limit, q.Offset)
	return &ProductPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// GetProduct returns an active product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrNotFound
	}
	return product, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, in ProductInput) error {
	if len(strings.TrimSpace(in.Name)) < 3 {
		return fmt.Errorf("%w: name must have at least 3 characters", ErrInvalidInput)
	}
	if !in.Price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	if !centScale(in.Price) {
		return fmt.Errorf("%w: price must have at most 2 decimal places", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	if err := validateDiscount(in.Price, in.IsOffer, in.DiscountPrice); err != nil {
		return err
	}
	if in.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: unknown category %s", ErrInvalidInput, *in.CategoryID)
			}
			return err
		}
	}
	return nil
}

func validateDiscount(price decimal.Decimal, isOffer bool, discount decimal.NullDecimal) error {
	if isOffer && !discount.Valid {
		return fmt.Errorf("%w: an offer needs a discount price", ErrInvalidInput)
	}
	if discount.Valid {
		if !discount.Decimal.IsPositive() {
			return fmt.Errorf("%w: discount price must be positive", ErrInvalidInput)
		}
		if !centScale(discount.Decimal) {
			return fmt.Errorf("%w: discount price must have at most 2 decimal places", ErrInvalidInput)
		}
		if !discount.Decimal.LessThan(price) {
			return fmt.Errorf("%w: discount price must be lower than price", ErrInvalidInput)
		}
	}
	return nil
}

// centScale reports whether d has no digits past the cents. Trailing zeros
// such as 10.500 are accepted.
func centScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

func applyProductInput(p *models.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.Price = in.Price
	p.DiscountPrice = in.DiscountPrice
	p.IsOffer = in.IsOffer
	p.Stock = in.Stock
	p.IsActive = in.IsActive
	p.ImageURL = in.ImageURL
	p.CategoryID = in.CategoryID
}

// CreateProduct adds a product to the catalog. Admin only.
func (s *CatalogService) CreateProduct(ctx context.Context, requester *models.Principal, in ProductInput) (*models.Product, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, in); err != nil {
		return nil, err
	}

	product := &models.Product{}
	applyProductInput(product, in)
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct replaces the editable fields of a product. Admin only.
// Existing order items keep the price they were charged.
func (s *CatalogService) UpdateProduct(ctx context.Context, requester *models.Principal, id string, in ProductInput) (*models.Product, error) {
	if err := requireAdmin(requester); err != nil {
		return nil, err
	}
	if err := s.validateProduct(ctx, in); err != nil {
		return nil, err
	}

	product := &models.Product{ID: id}
	applyProductInput(product, in)
	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.products.GetByID(ctx, id)
}

// DeleteProduct removes a product from the catalog. Admin only.
func (s *CatalogService) DeleteProduct(ctx context.Context, requester *models.Principal, id string) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// SetStock records an inventory count. Admin only.
func (s *CatalogService) SetStock(ctx context.Context, requester *models.Principal, id string, stock int) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidInput)
	}
	if err := s.products.SetStock(ctx, id, stock); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// SetPromotion puts a product on offer or takes it off. Admin only.
func (s *CatalogService) SetPromotion(ctx context.Context, requester *models.Principal, id string, isOffer bool, discount decimal.NullDecimal) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if err := validateDiscount(product.Price, isOffer, discount); err != nil {
		return err
	}
	return s.products.SetPromotion(ctx, id, isOffer, discount)
}

// CategoryTree returns root categories with their descendants nested, each
// level sorted by name.
func (s *CatalogService) CategoryTree(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}
	return buildCategoryTree(categories), nil
}

func buildCategoryTree(categories []models.Category) []models.Category {
	known := make(map[string]bool, len(categories))
	byParent := make(map[string][]models.Category)
	for _, c := range categories {
		known[c.ID] = true
	}
	for _, c := range categories {
		parent := ""
		if c.ParentID != nil && known[*c.ParentID] {
			parent = *c.ParentID
		}
		byParent[parent] = append(byParent[parent], c)
	}

	var attach func(parent string, seen map[string]bool) []models.Category
	attach = func(parent string, seen map[string]bool) []models.Category {
		nodes := byParent[parent]
		sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
		out := make([]models.Category, 0, len(nodes))
		for _, n := range nodes {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			n.Children = attach(n.ID, seen)
			out = append(out, n)
		}
		return out
	}
	return attach("", map[string]bool{})
}

// CreateCategory adds a category. Admin only.
func (s *CatalogService) CreateCategory(ctx context.Context, requester *models.Principal, category *models.Category) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if err := s.validateCategory(ctx, category); err != nil {
		return err
	}
	if err := s.categories.Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("%w: slug %q is already in use", ErrInvalidInput, category.Slug)
		}
		return err
	}
	return nil
}

// UpdateCategory renames or moves a category. Admin only.
func (s *CatalogService) UpdateCategory(ctx context.Context, requester *models.Principal, category *models.Category) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}
	if err := s.validateCategory(ctx, category); err != nil {
		return err
	}
	if err := s.categories.Update(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, repositories.ErrDuplicate) {
			return fmt.Errorf("%w: slug %q is already in use", ErrInvalidInput, category.Slug)
		}
		return err
	}
	return nil
}

func (s *CatalogService) validateCategory(ctx context.Context, category *models.Category) error {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if category.Slug == "" {
		category.Slug = slugify(category.Name)
	}
	if category.ParentID != nil {
		if category.ID != "" && *category.ParentID == category.ID {
			return fmt.Errorf("%w: a category cannot be its own parent", ErrInvalidInput)
		}
		if _, err := s.categories.GetByID(ctx, *category.ParentID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: unknown parent category %s", ErrInvalidInput, *category.ParentID)
			}
			return err
		}
	}
	return nil
}

func slugify(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// DeleteCategory removes an empty category. Admin only.
func (s *CatalogService) DeleteCategory(ctx context.Context, requester *models.Principal, id string) error {
	if err := requireAdmin(requester); err != nil {
		return err
	}

	n, err := s.categories.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: %d products are filed under it", ErrCategoryInUse, n)
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range categories {
		if c.ParentID != nil && *c.ParentID == id {
			return fmt.Errorf("%w: it has subcategories", ErrCategoryInUse)
		}
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
