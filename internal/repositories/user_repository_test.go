package repositories_test

import (
	"tienda/internal/models"
	"tienda/internal/repositories"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomUser() *models.User {
	return &models.User{
		Username: gofakeit.Username(),
		Email:    gofakeit.Email(),
		Password: gofakeit.Password(true, true, true, false, false, 12),
		Role:     models.RoleCustomer,
	}
}

func (suite *repositorySuite) TestUserCreateAndLookup() {
	t := suite.T()
	ctx := t.Context()

	user := randomUser()
	require.NoError(t, suite.users.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	lookups := map[string]func() (*models.User, error){
		"by username": func() (*models.User, error) { return suite.users.GetByUsername(ctx, user.Username) },
		"by email":    func() (*models.User, error) { return suite.users.GetByEmail(ctx, user.Email) },
		"by id":       func() (*models.User, error) { return suite.users.GetByID(ctx, user.ID) },
	}
	for name, lookup := range lookups {
		got, err := lookup()
		require.NoError(t, err, name)
		assert.Equal(t, user.ID, got.ID, name)
		assert.Equal(t, user.Username, got.Username, name)
	}

	_, err := suite.users.GetByUsername(ctx, "nobody-"+gofakeit.UUID())
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func (suite *repositorySuite) TestUserCreate_Duplicate() {
	t := suite.T()
	ctx := t.Context()

	user := randomUser()
	require.NoError(t, suite.users.Create(ctx, user))

	sameName := randomUser()
	sameName.Username = user.Username
	require.ErrorIs(t, suite.users.Create(ctx, sameName), repositories.ErrDuplicate)

	sameEmail := randomUser()
	sameEmail.Email = user.Email
	require.ErrorIs(t, suite.users.Create(ctx, sameEmail), repositories.ErrDuplicate)
}

func (suite *repositorySuite) TestUserListAndRole() {
	t := suite.T()
	ctx := t.Context()

	alice := randomUser()
	alice.Username = "alice"
	bob := randomUser()
	bob.Username = "bob"
	require.NoError(t, suite.users.Create(ctx, bob))
	require.NoError(t, suite.users.Create(ctx, alice))

	users, err := suite.users.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	require.NoError(t, suite.users.UpdateRole(ctx, bob.ID, models.RoleAdmin))
	got, err := suite.users.GetByID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	require.ErrorIs(t, suite.users.UpdateRole(ctx, gofakeit.UUID(), models.RoleAdmin), repositories.ErrNotFound)
}

func (suite *repositorySuite) TestCategories() {
	t := suite.T()
	ctx := t.Context()

	paint := &models.Category{Name: "Pinturas", Slug: "pinturas"}
	require.NoError(t, suite.categories.Create(ctx, paint))
	vinyl := &models.Category{Name: "Vinilos", Slug: "vinilos", ParentID: ptr(paint.ID)}
	require.NoError(t, suite.categories.Create(ctx, vinyl))

	err := suite.categories.Create(ctx, &models.Category{Name: "Otra", Slug: "pinturas"})
	require.ErrorIs(t, err, repositories.ErrDuplicate)

	all, err := suite.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Pinturas", all[0].Name)
	require.NotNil(t, all[1].ParentID)
	assert.Equal(t, paint.ID, *all[1].ParentID)

	suite.createProduct(func(p *models.Product) { p.CategoryID = ptr(vinyl.ID) })
	n, err := suite.categories.CountProducts(ctx, vinyl.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	vinyl.Slug = "pinturas"
	require.ErrorIs(t, suite.categories.Update(ctx, vinyl), repositories.ErrDuplicate)

	vinyl.Name = "Vinilos y esmaltes"
	vinyl.Slug = "vinilos-esmaltes"
	require.NoError(t, suite.categories.Update(ctx, vinyl))
	got, err := suite.categories.GetByID(ctx, vinyl.ID)
	require.NoError(t, err)
	assert.Equal(t, "vinilos-esmaltes", got.Slug)

	require.NoError(t, suite.categories.Delete(ctx, paint.ID))
	_, err = suite.categories.GetByID(ctx, paint.ID)
	require.ErrorIs(t, err, repositories.ErrNotFound)
	require.ErrorIs(t, suite.categories.Delete(ctx, paint.ID), repositories.ErrNotFound)
}
