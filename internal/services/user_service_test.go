package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fintrackhq/fintrack/internal/database/testutil"
	"github.com/fintrackhq/fintrack/internal/models"
)

func TestUserCreateSeedsDefaultCategories(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{
		Name: "Alice", Email: "Alice@Example.com", Password: "correct horse", Currency: "eur",
	})
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.Equal(t, "EUR", user.Currency)
	require.NotEqual(t, "correct horse", user.PasswordHash)

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Where("user_id = ?", user.ID).Count(&categories).Error)
	require.Greater(t, categories, int64(0))

	// Duplicate email is rejected.
	_, err = svc.Create(ctx, CreateUserInput{
		Name: "Alice Again", Email: "alice@example.com", Password: "correct horse",
	})
	require.Error(t, err)
}

func TestUserAuthenticate(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, CreateUserInput{
		Name: "Bob", Email: "bob@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "bob@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, "Bob", user.Name)

	_, err = svc.Authenticate(ctx, "bob@example.com", "wrong")
	require.Error(t, err)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "hunter2hunter2")
	require.Error(t, err)
}

func TestUserUpdateProfile(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	svc, err := NewUserService(db)
	require.NoError(t, err)
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{
		Name: "Carol", Email: "carol@example.com", Password: "swordfish123",
	})
	require.NoError(t, err)

	name := "Caroline"
	currency := "gbp"
	updated, err := svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Name: &name, Currency: &currency})
	require.NoError(t, err)
	require.Equal(t, "Caroline", updated.Name)
	require.Equal(t, "GBP", updated.Currency)

	bad := "pounds"
	_, err = svc.UpdateProfile(ctx, user.ID, UpdateProfileInput{Currency: &bad})
	require.Error(t, err)
}
