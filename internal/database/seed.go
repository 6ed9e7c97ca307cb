package database

import (
	"fmt"
	"log"

	"tienda/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func ptr(s string) *string { return &s }

// Seed fills an empty catalog with a few categories and products.
// It does nothing when products already exist.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{ID: "0b8e7c1e-3f5a-4c51-9d0e-5a1f0c6a1a01", Name: "Pinturas", Slug: "pinturas"},
		{ID: "0b8e7c1e-3f5a-4c51-9d0e-5a1f0c6a1a02", Name: "Vinilos", Slug: "vinilos", ParentID: ptr("0b8e7c1e-3f5a-4c51-9d0e-5a1f0c6a1a01")},
		{ID: "0b8e7c1e-3f5a-4c51-9d0e-5a1f0c6a1a03", Name: "Herramientas", Slug: "herramientas"},
	}
	products := []models.Product{
		{
			Name:        "Pintura A",
			Description: "Vinilo tipo 1 para interiores, galón",
			Price:       decimal.RequireFromString("45.90"),
			Stock:       20,
			IsActive:    true,
			CategoryID:  ptr(categories[1].ID),
		},
		{
			Name:          "Esmalte Sintético",
			Description:   "Esmalte brillante para madera y metal, cuarto",
			Price:         decimal.RequireFromString("32.50"),
			DiscountPrice: decimal.NewNullDecimal(decimal.RequireFromString("27.90")),
			IsOffer:       true,
			Stock:         35,
			IsActive:      true,
			CategoryID:    ptr(categories[0].ID),
		},
		{
			Name:        "Sierra Circular",
			Description: "Sierra circular 7 1/4\" 1400W",
			Price:       decimal.RequireFromString("389.00"),
			Stock:       0,
			IsActive:    true,
			CategoryID:  ptr(categories[2].ID),
		},
		{
			Name:        "Rodillo Profesional",
			Description: "Rodillo de felpa 9\"",
			Price:       decimal.RequireFromString("12.75"),
			Stock:       60,
			IsActive:    true,
			CategoryID:  ptr(categories[2].ID),
		},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&categories).Error; err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}
		for i := range products {
			products[i].ID = fmt.Sprintf("7f3c2a10-6d1e-4b8a-a2c4-00000000000%d", i+1)
			if err := tx.Create(&products[i]).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", products[i].Name, err)
			}
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
		return nil
	})
}
