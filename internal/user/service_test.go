package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/coaching-backend/internal/auth"
	"github.com/nekogravitycat/coaching-backend/internal/pkg/clock"
)

func newTestService() (Service, *memRepository, *clock.Fixed) {
	repo := newMemRepository()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	return NewService(repo, auth.NewBcryptPasswordHasherWithCost(4), clk), repo, clk
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes email and defaults role to client", func(t *testing.T) {
		svc, _, _ := newTestService()
		u, err := svc.Register(ctx, RegisterRequest{Name: " Ana ", Email: "  Ana@Example.COM ", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "ana@example.com", u.Email)
		assert.Equal(t, "Ana", u.Name)
		assert.Equal(t, RoleClient, u.Role)
		assert.True(t, u.IsActive)
		assert.NotEqual(t, "secret", u.PasswordHash)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		svc, _, _ := newTestService()
		_, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "a@x.io", Password: "secret"})
		require.NoError(t, err)
		_, err = svc.Register(ctx, RegisterRequest{Name: "Bo", Email: "A@X.io", Password: "secret"})
		assert.ErrorIs(t, err, ErrEmailAlreadyUsed)
	})

	tests := []struct {
		name string
		req  RegisterRequest
		want error
	}{
		{"missing email", RegisterRequest{Name: "Ana", Password: "secret"}, ErrEmailRequired},
		{"short name", RegisterRequest{Name: "A", Email: "a@x.io", Password: "secret"}, ErrNameTooShort},
		{"short password", RegisterRequest{Name: "Ana", Email: "a@x.io", Password: "12345"}, ErrPasswordTooShort},
		{"long password", RegisterRequest{Name: "Ana", Email: "a@x.io", Password: strings.Repeat("p", 73)}, ErrPasswordTooLong},
		{"unknown role", RegisterRequest{Name: "Ana", Email: "a@x.io", Password: "secret", Role: "admin"}, ErrInvalidRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			_, err := svc.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, repo, clk := newTestService()

	u, err := svc.Register(ctx, RegisterRequest{Name: "Coach Kim", Email: "kim@x.io", Password: "secret", Role: RoleCoach})
	require.NoError(t, err)

	got, err := svc.Login(ctx, "KIM@x.io", "secret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	require.NotNil(t, got.LastLoginAt)
	assert.Equal(t, clk.Now(), *got.LastLoginAt)

	_, err = svc.Login(ctx, "kim@x.io", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@x.io", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, repo.Delete(ctx, u.ID))
	_, err = svc.Login(ctx, "kim@x.io", "secret")
	assert.ErrorIs(t, err, ErrInactiveUser)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	u, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: "a@x.io", Password: "secret"})
	require.NoError(t, err)

	name := "Ana Maria"
	role := RoleCoach
	updated, err := svc.Update(ctx, u.ID, UpdateRequest{Name: &name, Role: &role})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.True(t, updated.IsCoach())

	bad := Role("owner")
	_, err = svc.Update(ctx, u.ID, UpdateRequest{Role: &bad})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Update(ctx, "missing", UpdateRequest{Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByName(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService()

	_, err := svc.Register(ctx, RegisterRequest{Name: "Jordan Lee", Email: "j@x.io", Password: "secret"})
	require.NoError(t, err)

	found, err := svc.FindByName(ctx, "jordan")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Jordan Lee", found[0].Name)

	found, err = svc.FindByName(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, found)
}
