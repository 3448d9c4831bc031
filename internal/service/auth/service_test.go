package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/heartmarshall/keepsake-backend/internal/config"
	"github.com/heartmarshall/keepsake-backend/internal/domain"
)

// ===========================================================================
// Manual mocks (moq-style with func fields)
// ===========================================================================

type mockUserRepo struct {
	CreateFunc     func(ctx context.Context, user *domain.User) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, domain.ErrNotFound
}

type mockJWTManager struct {
	GenerateAccessTokenFunc func(userID uuid.UUID) (string, error)
}

func (m *mockJWTManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	if m.GenerateAccessTokenFunc != nil {
		return m.GenerateAccessTokenFunc(userID)
	}
	return "test-token", nil
}

func newTestService(users *mockUserRepo) *Service {
	return NewService(
		slog.New(slog.NewTextHandler(os.Stdout, nil)),
		users,
		&mockJWTManager{},
		config.AuthConfig{PasswordHashCost: bcrypt.MinCost},
	)
}

// ===========================================================================
// Register
// ===========================================================================

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates user and issues token", func(t *testing.T) {
		t.Parallel()

		var created *domain.User
		users := &mockUserRepo{
			CreateFunc: func(_ context.Context, u *domain.User) error {
				created = u
				return nil
			},
		}
		svc := newTestService(users)

		res, err := svc.Register(ctx, RegisterInput{
			Email:    "  Maria@Example.COM ",
			Name:     "Maria",
			Password: "correct horse",
		})
		require.NoError(t, err)

		assert.Equal(t, "test-token", res.AccessToken)
		require.NotNil(t, created)
		assert.Equal(t, "maria@example.com", created.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct horse")))
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		users := &mockUserRepo{
			CreateFunc: func(_ context.Context, _ *domain.User) error {
				return domain.ErrAlreadyExists
			},
		}
		svc := newTestService(users)

		_, err := svc.Register(ctx, RegisterInput{
			Email:    "maria@example.com",
			Name:     "Maria",
			Password: "correct horse",
		})
		assert.ErrorIs(t, err, domain.ErrAlreadyExists)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		cases := []struct {
			name  string
			input RegisterInput
		}{
			{"missing email", RegisterInput{Name: "M", Password: "longenough"}},
			{"bad email", RegisterInput{Email: "nope", Name: "M", Password: "longenough"}},
			{"short password", RegisterInput{Email: "a@b.c", Name: "M", Password: "short"}},
			{"missing name", RegisterInput{Email: "a@b.c", Password: "longenough"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				svc := newTestService(&mockUserRepo{})
				_, err := svc.Register(ctx, tc.input)
				assert.ErrorIs(t, err, domain.ErrValidation)
			})
		}
	})
}

// ===========================================================================
// Login
// ===========================================================================

func TestLogin(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &domain.User{
		ID:           uuid.New(),
		Email:        "maria@example.com",
		Name:         "Maria",
		PasswordHash: string(hash),
	}

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		users := &mockUserRepo{
			GetByEmailFunc: func(_ context.Context, email string) (*domain.User, error) {
				assert.Equal(t, "maria@example.com", email)
				return stored, nil
			},
		}
		svc := newTestService(users)

		res, err := svc.Login(ctx, LoginInput{Email: "Maria@example.com", Password: "correct horse"})
		require.NoError(t, err)
		assert.Equal(t, stored.ID, res.User.ID)
		assert.NotEmpty(t, res.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		users := &mockUserRepo{
			GetByEmailFunc: func(_ context.Context, _ string) (*domain.User, error) {
				return stored, nil
			},
		}
		svc := newTestService(users)

		_, err := svc.Login(ctx, LoginInput{Email: "maria@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("unknown email maps to unauthorized", func(t *testing.T) {
		t.Parallel()

		svc := newTestService(&mockUserRepo{
			GetByEmailFunc: func(_ context.Context, _ string) (*domain.User, error) {
				return nil, domain.ErrNotFound
			},
		})

		_, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
		assert.NotErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("repo failure propagates", func(t *testing.T) {
		t.Parallel()

		dbErr := errors.New("db down")
		svc := newTestService(&mockUserRepo{
			GetByEmailFunc: func(_ context.Context, _ string) (*domain.User, error) {
				return nil, dbErr
			},
		})

		_, err := svc.Login(ctx, LoginInput{Email: "maria@example.com", Password: "correct horse"})
		assert.ErrorIs(t, err, dbErr)
	})
}
