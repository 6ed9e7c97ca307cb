package handlers

import (
	"tienda/internal/middleware"
	"tienda/internal/models"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Services bundles the business services exposed over HTTP.
type Services struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Cart    *services.CartService
	Order   *services.OrderService
}

// SetupRoutes mounts the API under /api/v1. Public routes are registered
// before the authenticated group so they never reach the JWT check.
func SetupRoutes(app *fiber.App, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	cartHandler := NewCartHandler(svc.Cart)
	orderHandler := NewOrderHandler(svc.Order)

	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	catalogHandler.RegisterRoutes(apiV1)

	// Protected routes (require JWT authentication)
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(svc.Auth))
	cartHandler.RegisterRoutes(protectedRoutes)
	orderHandler.RegisterRoutes(protectedRoutes)

	// Back-office routes
	adminRoutes := protectedRoutes.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	catalogHandler.RegisterAdminRoutes(adminRoutes)
	orderHandler.RegisterAdminRoutes(adminRoutes)
	authHandler.RegisterAdminRoutes(adminRoutes)
}
