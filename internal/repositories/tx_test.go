package repositories_test

import (
	"errors"
	"sync"

	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *repositorySuite) TestWithinTransaction_RollsBack() {
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct(func(p *models.Product) { p.Stock = 10 })
	order := suite.newOrder(gofakeit.UUID(), product)

	boom := errors.New("boom")
	err := suite.tx.WithinTransaction(ctx, func(repos repositories.Repositories) error {
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		if err := repos.Products.DecrementStock(ctx, product.ID, 4); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, 10, suite.stockOf(product.ID))
	_, err = suite.orders.GetByID(ctx, order.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func (suite *repositorySuite) TestWithinTransaction_Commits() {
	t := suite.T()
	ctx := t.Context()

	product := suite.createProduct(func(p *models.Product) { p.Stock = 10 })
	order := suite.newOrder(gofakeit.UUID(), product)

	err := suite.tx.WithinTransaction(ctx, func(repos repositories.Repositories) error {
		if err := repos.Orders.Create(ctx, order); err != nil {
			return err
		}
		return repos.Products.DecrementStock(ctx, product.ID, 4)
	})
	require.NoError(t, err)

	assert.Equal(t, 6, suite.stockOf(product.ID))
	_, err = suite.orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
}

func (suite *repositorySuite) TestDecrementStock_ConcurrentBuyers() {
	t := suite.T()
	ctx := t.Context()

	const stock, buyers = 5, 12
	product := suite.createProduct(func(p *models.Product) { p.Stock = stock })

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sold     int
		rejected []error
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := suite.tx.WithinTransaction(ctx, func(repos repositories.Repositories) error {
				return repos.Products.DecrementStock(ctx, product.ID, 1)
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				rejected = append(rejected, err)
				return
			}
			sold++
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, sold)
	require.Len(t, rejected, buyers-stock)
	for _, err := range rejected {
		assert.ErrorIs(t, err, repositories.ErrInsufficientStock)
	}
	assert.Equal(t, 0, suite.stockOf(product.ID))
}
