package repositories_test

import (
	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *repositorySuite) TestProductCreateAndGet() {
	t := suite.T()
	ctx := t.Context()

	category := &models.Category{Name: "Pinturas", Slug: "pinturas"}
	require.NoError(t, suite.categories.Create(ctx, category))

	product := suite.createProduct(func(p *models.Product) {
		p.IsOffer = true
		p.Price = dec("45.90")
		p.DiscountPrice = decimal.NewNullDecimal(dec("39.90"))
		p.CategoryID = &category.ID
	})
	require.NotEmpty(t, product.ID)

	got, err := suite.products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assertProduct(t, product, got)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Pinturas", got.Category.Name)
	assert.True(t, got.EffectivePrice().Equal(dec("39.90")))
}

func (suite *repositorySuite) TestProductGetByID_NotFound() {
	_, err := suite.products.GetByID(suite.T().Context(), gofakeit.UUID())
	require.ErrorIs(suite.T(), err, repositories.ErrNotFound)
}

func (suite *repositorySuite) TestProductList() {
	ctx := suite.T().Context()

	tools := &models.Category{Name: "Herramientas", Slug: "herramientas"}
	suite.Require().NoError(suite.categories.Create(ctx, tools))

	suite.createProduct(func(p *models.Product) {
		p.Name = "Pintura Azul"
		p.Description = "Base agua"
		p.Price = dec("10.00")
	})
	suite.createProduct(func(p *models.Product) {
		p.Name = "Pintura Roja"
		p.Description = "Esmalte"
		p.Price = dec("20.00")
		p.IsOffer = true
		p.DiscountPrice = decimal.NewNullDecimal(dec("15.00"))
	})
	suite.createProduct(func(p *models.Product) {
		p.Name = "Taladro"
		p.Description = "Percutor de base metálica"
		p.Price = dec("30.00")
		p.CategoryID = &tools.ID
	})
	suite.createProduct(func(p *models.Product) {
		p.Name = "Lija"
		p.Price = dec("5.00")
		p.IsActive = false
	})

	tests := []struct {
		name      string
		query     repositories.ProductQuery
		wantNames []string
		wantTotal int64
	}{
		{
			name:      "active products only",
			query:     repositories.ProductQuery{Sort: repositories.SortName},
			wantNames: []string{"Pintura Azul", "Pintura Roja", "Taladro"},
			wantTotal: 3,
		},
		{
			name:      "inactive products included",
			query:     repositories.ProductQuery{Sort: repositories.SortName, IncludeInactive: true},
			wantNames: []string{"Lija", "Pintura Azul", "Pintura Roja", "Taladro"},
			wantTotal: 4,
		},
		{
			name:      "search by name is case insensitive",
			query:     repositories.ProductQuery{Search: "PINTURA", Sort: repositories.SortName},
			wantNames: []string{"Pintura Azul", "Pintura Roja"},
			wantTotal: 2,
		},
		{
			name:      "search matches description",
			query:     repositories.ProductQuery{Search: "base", Sort: repositories.SortName},
			wantNames: []string{"Pintura Azul", "Taladro"},
			wantTotal: 2,
		},
		{
			name:      "filter by category",
			query:     repositories.ProductQuery{CategoryID: tools.ID},
			wantNames: []string{"Taladro"},
			wantTotal: 1,
		},
		{
			name:      "offers only",
			query:     repositories.ProductQuery{OnlyOffers: true},
			wantNames: []string{"Pintura Roja"},
			wantTotal: 1,
		},
		{
			name: "price range",
			query: repositories.ProductQuery{
				MinPrice: decimal.NewNullDecimal(dec("15")),
				MaxPrice: decimal.NewNullDecimal(dec("25")),
			},
			wantNames: []string{"Pintura Roja"},
			wantTotal: 1,
		},
		{
			name:      "cheapest first",
			query:     repositories.ProductQuery{Sort: repositories.SortPriceAsc},
			wantNames: []string{"Pintura Azul", "Pintura Roja", "Taladro"},
			wantTotal: 3,
		},
		{
			name:      "most expensive first",
			query:     repositories.ProductQuery{Sort: repositories.SortPriceDesc},
			wantNames: []string{"Taladro", "Pintura Roja", "Pintura Azul"},
			wantTotal: 3,
		},
		{
			name:      "second page",
			query:     repositories.ProductQuery{Sort: repositories.SortName, Limit: 2, Offset: 2},
			wantNames: []string{"Taladro"},
			wantTotal: 3,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			products, total, err := suite.products.List(t.Context(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names(products))
			assert.Equal(t, tt.wantTotal, total)
		})
	}
}

func (suite *repositorySuite) TestProductUpdate() {
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct()
	product.Name = "Rodillo Profesional"
	product.Price = dec("12.75")
	product.IsActive = false
	require.NoError(t, suite.products.Update(ctx, product))

	got, err := suite.products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assertProduct(t, product, got)

	missing := randomProduct()
	missing.ID = gofakeit.UUID()
	require.ErrorIs(t, suite.products.Update(ctx, missing), repositories.ErrNotFound)
}

func (suite *repositorySuite) TestProductDelete() {
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct()
	require.NoError(t, suite.products.Delete(ctx, product.ID))

	_, err := suite.products.GetByID(ctx, product.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)
	require.ErrorIs(t, suite.products.Delete(ctx, product.ID), repositories.ErrNotFound)
}

func (suite *repositorySuite) TestProductSetStock() {
	product := suite.createProduct(func(p *models.Product) { p.Stock = 3 })

	tests := []struct {
		name      string
		id        string
		stock     int
		wantErr   error
		wantStock int
	}{
		{
			name:      "restock",
			id:        product.ID,
			stock:     40,
			wantStock: 40,
		},
		{
			name:      "sold out",
			id:        product.ID,
			stock:     0,
			wantStock: 0,
		},
		{
			name:      "negative stock is rejected by the database",
			id:        product.ID,
			stock:     -1,
			wantErr:   repositories.ErrInvalidStock,
			wantStock: 0,
		},
		{
			name:    "unknown product",
			id:      gofakeit.UUID(),
			stock:   5,
			wantErr: repositories.ErrNotFound,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			err := suite.products.SetStock(t.Context(), tt.id, tt.stock)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.id == product.ID {
				assert.Equal(t, tt.wantStock, suite.stockOf(product.ID))
			}
		})
	}
}

func (suite *repositorySuite) TestProductSetPromotion() {
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct(func(p *models.Product) { p.Price = dec("32.50") })

	require.NoError(t, suite.products.SetPromotion(ctx, product.ID, true, decimal.NewNullDecimal(dec("27.90"))))
	got, err := suite.products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.True(t, got.IsOffer)
	assert.True(t, got.EffectivePrice().Equal(dec("27.90")))

	require.NoError(t, suite.products.SetPromotion(ctx, product.ID, false, decimal.NullDecimal{}))
	got, err = suite.products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, got.IsOffer)
	assert.False(t, got.DiscountPrice.Valid)
	assert.True(t, got.EffectivePrice().Equal(dec("32.50")))

	err = suite.products.SetPromotion(ctx, gofakeit.UUID(), false, decimal.NullDecimal{})
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func (suite *repositorySuite) TestProductDecrementStock() {
	product := suite.createProduct(func(p *models.Product) { p.Stock = 5 })

	tests := []struct {
		name      string
		id        string
		amount    int
		wantErr   error
		wantError string
		wantStock int
	}{
		{
			name:      "take some units",
			id:        product.ID,
			amount:    3,
			wantStock: 2,
		},
		{
			name:      "more than what is left",
			id:        product.ID,
			amount:    3,
			wantErr:   repositories.ErrInsufficientStock,
			wantStock: 2,
		},
		{
			name:      "exactly what is left",
			id:        product.ID,
			amount:    2,
			wantStock: 0,
		},
		{
			name:      "zero units",
			id:        product.ID,
			amount:    0,
			wantError: "invalid stock decrement 0 for product " + product.ID,
			wantStock: 0,
		},
		{
			name:    "unknown product",
			id:      gofakeit.UUID(),
			amount:  1,
			wantErr: repositories.ErrInsufficientStock,
		},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			t := suite.T()

			err := suite.products.DecrementStock(t.Context(), tt.id, tt.amount)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantError != "":
				require.EqualError(t, err, tt.wantError)
			default:
				require.NoError(t, err)
			}
			if tt.id == product.ID {
				assert.Equal(t, tt.wantStock, suite.stockOf(product.ID))
			}
		})
	}
}
