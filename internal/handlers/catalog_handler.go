package handlers

import (
	"fmt"

	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/repositories"
	"tienda/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// CatalogHandler handles HTTP requests for products and categories.
type CatalogHandler struct {
	service  *services.CatalogService
	validate *validator.Validate
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(service *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/categories", h.HandleCategoryTree)
}

// RegisterAdminRoutes registers catalog management routes on an admin-only router.
func (h *CatalogHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleAdminListProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
	productRoutes.Patch("/:id/stock", h.HandleSetStock)
	productRoutes.Patch("/:id/promotion", h.HandleSetPromotion)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
}

func decimalQuery(c *fiber.Ctx, key string) (decimal.NullDecimal, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%w: %s must be a number", services.ErrInvalidInput, key)
	}
	return decimal.NewNullDecimal(d), nil
}

// productQuery reads listing filters from the query string:
// search, category, offers, min_price, max_price, sort, limit, offset.
func productQuery(c *fiber.Ctx) (repositories.ProductQuery, error) {
	q := repositories.ProductQuery{
		Search:     c.Query("search"),
		CategoryID: c.Query("category"),
		OnlyOffers: c.QueryBool("offers"),
		Sort:       c.Query("sort"),
		Limit:      c.QueryInt("limit"),
		Offset:     c.QueryInt("offset"),
	}
	var err error
	if q.MinPrice, err = decimalQuery(c, "min_price"); err != nil {
		return q, err
	}
	if q.MaxPrice, err = decimalQuery(c, "max_price"); err != nil {
		return q, err
	}
	return q, nil
}

// HandleListProducts lists active products.
func (h *CatalogHandler) HandleListProducts(c *fiber.Ctx) error {
	q, err := productQuery(c)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	page, err := h.service.ListProducts(c.UserContext(), q)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(page)
}

// HandleAdminListProducts lists products including inactive ones.
func (h *CatalogHandler) HandleAdminListProducts(c *fiber.Ctx) error {
	q, err := productQuery(c)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	page, err := h.service.AdminListProducts(c.UserContext(), middleware.PrincipalFrom(c), q)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(page)
}

// HandleGetProduct retrieves a single product by its ID.
func (h *CatalogHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// ProductRequest is the body of product create and update requests.
// Prices may be sent as JSON numbers or strings.
type ProductRequest struct {
	Name          string              `json:"name" validate:"required,min=3,max=255"`
	Description   string              `json:"description"`
	Price         decimal.Decimal     `json:"price"`
	DiscountPrice decimal.NullDecimal `json:"discount_price"`
	IsOffer       bool                `json:"is_offer"`
	Stock         int                 `json:"stock" validate:"gte=0"`
	IsActive      *bool               `json:"is_active"`
	ImageURL      string              `json:"image_url" validate:"omitempty,url"`
	CategoryID    *string             `json:"category_id"`
}

func (r ProductRequest) input() services.ProductInput {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return services.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		IsOffer:       r.IsOffer,
		Stock:         r.Stock,
		IsActive:      active,
		ImageURL:      r.ImageURL,
		CategoryID:    r.CategoryID,
	}
}

func (h *CatalogHandler) parseProduct(c *fiber.Ctx) (*ProductRequest, bool, error) {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, false, badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return nil, false, err
	}
	return &req, true, nil
}

// HandleCreateProduct creates a new product.
func (h *CatalogHandler) HandleCreateProduct(c *fiber.Ctx) error {
	req, ok, err := h.parseProduct(c)
	if !ok {
		return err
	}
	product, err := h.service.CreateProduct(c.UserContext(), middleware.PrincipalFrom(c), req.input())
	if err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct replaces the editable fields of a product.
func (h *CatalogHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	req, ok, err := h.parseProduct(c)
	if !ok {
		return err
	}
	product, err := h.service.UpdateProduct(c.UserContext(), middleware.PrincipalFrom(c), c.Params("id"), req.input())
	if err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the catalog.
func (h *CatalogHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), middleware.PrincipalFrom(c), productID); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", productID),
	})
}

// HandleSetStock records an inventory count.
func (h *CatalogHandler) HandleSetStock(c *fiber.Ctx) error {
	var req struct {
		Stock *int `json:"stock" validate:"required,gte=0"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return err
	}

	if err := h.service.SetStock(c.UserContext(), middleware.PrincipalFrom(c), c.Params("id"), *req.Stock); err != nil {
		return respondError(c, err, "Could not update stock")
	}
	return c.JSON(fiber.Map{
		"message": "Stock updated successfully",
	})
}

// HandleSetPromotion puts a product on offer or takes it off.
func (h *CatalogHandler) HandleSetPromotion(c *fiber.Ctx) error {
	var req struct {
		IsOffer       bool                `json:"is_offer"`
		DiscountPrice decimal.NullDecimal `json:"discount_price"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}

	if err := h.service.SetPromotion(c.UserContext(), middleware.PrincipalFrom(c), c.Params("id"), req.IsOffer, req.DiscountPrice); err != nil {
		return respondError(c, err, "Could not update promotion")
	}
	return c.JSON(fiber.Map{
		"message": "Promotion updated successfully",
	})
}

// HandleCategoryTree returns the nested category tree.
func (h *CatalogHandler) HandleCategoryTree(c *fiber.Ctx) error {
	tree, err := h.service.CategoryTree(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(tree)
}

// CategoryRequest is the body of category create and update requests.
type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Slug        string  `json:"slug" validate:"omitempty,max=120"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
}

func (h *CatalogHandler) parseCategory(c *fiber.Ctx) (*models.Category, bool, error) {
	var req CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, false, badBody(c, err)
	}
	if ok, err := validateBody(c, h.validate, req); !ok {
		return nil, false, err
	}
	return &models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ParentID:    req.ParentID,
	}, true, nil
}

// HandleCreateCategory creates a category.
func (h *CatalogHandler) HandleCreateCategory(c *fiber.Ctx) error {
	category, ok, err := h.parseCategory(c)
	if !ok {
		return err
	}
	if err := h.service.CreateCategory(c.UserContext(), middleware.PrincipalFrom(c), category); err != nil {
		return respondError(c, err, "Could not create category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleUpdateCategory renames or moves a category.
func (h *CatalogHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	category, ok, err := h.parseCategory(c)
	if !ok {
		return err
	}
	category.ID = c.Params("id")
	if err := h.service.UpdateCategory(c.UserContext(), middleware.PrincipalFrom(c), category); err != nil {
		return respondError(c, err, "Could not update category")
	}
	return c.JSON(category)
}

// HandleDeleteCategory removes an empty category.
func (h *CatalogHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	categoryID := c.Params("id")
	if err := h.service.DeleteCategory(c.UserContext(), middleware.PrincipalFrom(c), categoryID); err != nil {
		return respondError(c, err, "Could not delete category")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Category %s deleted successfully", categoryID),
	})
}
