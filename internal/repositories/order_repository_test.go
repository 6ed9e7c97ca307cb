package repositories_test

import (
	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *repositorySuite) newOrder(userID string, products ...*models.Product) *models.Order {
	order := &models.Order{
		UserID:        userID,
		CustomerName:  gofakeit.Name(),
		Address:       gofakeit.Street(),
		City:          gofakeit.City(),
		Phone:         gofakeit.Numerify("3#########"),
		DocumentID:    gofakeit.Numerify("########"),
		Subtotal:      dec("91.80"),
		Tax:           dec("17.442"),
		ShippingPrice: dec("0"),
		Total:         dec("109.242"),
		Currency:      "COP",
		Status:        models.OrderStatusPending,
	}
	for i, p := range products {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Position:    i,
			Quantity:    i + 1,
			Price:       p.Price,
		})
	}
	return order
}

func (suite *repositorySuite) TestOrderCreateAndGet() {
	t := suite.T()
	ctx := t.Context()

	first := suite.createProduct()
	second := suite.createProduct()
	order := suite.newOrder(gofakeit.UUID(), first, second)
	// Stored out of order; reads come back by position.
	order.Items[0], order.Items[1] = order.Items[1], order.Items[0]
	require.NoError(t, suite.orders.Create(ctx, order))
	require.NotEmpty(t, order.ID)

	got, err := suite.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)

	expected := *order
	expected.Items = []models.OrderItem{order.Items[1], order.Items[0]}
	opts := cmp.Options{
		cmpopts.IgnoreFields(models.Order{}, "CreatedAt", "UpdatedAt"),
		cmpopts.IgnoreFields(models.OrderItem{}, "Product"),
		decimalComparer,
	}
	assert.Empty(t, cmp.Diff(&expected, got, opts))
	assert.False(t, got.CreatedAt.IsZero())

	_, err = suite.orders.GetByID(ctx, gofakeit.UUID())
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func (suite *repositorySuite) TestOrderKeepsDeletedProducts() {
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct()
	order := suite.newOrder(gofakeit.UUID(), product)
	require.NoError(t, suite.orders.Create(ctx, order))
	require.NoError(t, suite.products.Delete(ctx, product.ID))

	got, err := suite.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.NotNil(t, got.Items[0].Product)
	assert.Equal(t, product.Name, got.Items[0].Product.Name)
}

func (suite *repositorySuite) TestOrderLists() {
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct()
	owner, other := gofakeit.UUID(), gofakeit.UUID()

	older := suite.newOrder(owner, product)
	require.NoError(t, suite.orders.Create(ctx, older))
	newer := suite.newOrder(owner, product)
	require.NoError(t, suite.orders.Create(ctx, newer))
	foreign := suite.newOrder(other, product)
	require.NoError(t, suite.orders.Create(ctx, foreign))

	mine, err := suite.orders.ListByUser(ctx, owner, 0, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)
	assert.Len(t, mine[0].Items, 1)

	page, err := suite.orders.ListByUser(ctx, owner, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)

	all, err := suite.orders.ListAll(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func (suite *repositorySuite) TestOrderUpdateStatus() {
	t := suite.T()
	ctx := t.Context()

	order := suite.newOrder(gofakeit.UUID(), suite.createProduct())
	require.NoError(t, suite.orders.Create(ctx, order))

	require.NoError(t, suite.orders.UpdateStatus(ctx, order.ID, models.OrderStatusShipped))
	got, err := suite.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, got.Status)
	assert.True(t, got.Total.Equal(dec("109.242")), "status changes leave amounts alone")

	err = suite.orders.UpdateStatus(ctx, gofakeit.UUID(), models.OrderStatusCancelled)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}
