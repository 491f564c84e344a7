package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"loan_backend/internal/feature/auth/domain"
	"loan_backend/internal/feature/auth/domain/entity"
	"loan_backend/internal/platform/password"
)

// mockUserRepository is a mock implementation of UserRepository.
type mockUserRepository struct {
	CreateFunc             func(ctx context.Context, user *entity.User) error
	FindByEmailFunc        func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc           func(ctx context.Context, id uint) (*entity.User, error)
	UpdatePasswordHashFunc func(ctx context.Context, id uint, hash string) error
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil // Default: success
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePasswordHash(ctx context.Context, id uint, hash string) error {
	if m.UpdatePasswordHashFunc != nil {
		return m.UpdatePasswordHashFunc(ctx, id, hash)
	}
	return nil
}

// mockTokenIssuer is a mock implementation of TokenIssuer.
type mockTokenIssuer struct {
	IssueFunc func(email string) (string, error)
}

func (m *mockTokenIssuer) Issue(email string) (string, error) {
	if m.IssueFunc != nil {
		return m.IssueFunc(email)
	}
	return "mock-jwt-token", nil
}

func newTestHasher(t *testing.T) *password.Hasher {
	t.Helper()
	h, err := password.NewHasher(password.Params{Memory: 64, Iterations: 1, Parallelism: 1})
	require.NoError(t, err)
	return h
}

func TestAuthUsecase_Register(t *testing.T) {
	hasher := newTestHasher(t)

	t.Run("successful registration", func(t *testing.T) {
		var stored *entity.User
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				stored = user
				user.ID = 7
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})
		id, err := uc.Register(context.Background(), "Alice", "alice@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, uint(7), id)
		require.NotNil(t, stored)
		assert.Equal(t, "Alice", stored.Name)
		assert.Equal(t, "alice@example.com", stored.Email)
		assert.NotEqual(t, "password123", stored.PasswordHash, "password is not hashed")
		assert.NoError(t, hasher.Verify(stored.PasswordHash, "password123"))
		assert.False(t, hasher.NeedsRehash(stored.PasswordHash), "new hashes use the current scheme")
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return domain.ErrDuplicateIdentity
			},
		}

		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})
		_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "password123")

		assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	})

	t.Run("repository create failure", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mockRepo := &mockUserRepository{
			CreateFunc: func(ctx context.Context, user *entity.User) error {
				return expectedErr
			},
		}

		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})
		_, err := uc.Register(context.Background(), "Alice", "alice@example.com", "password123")

		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestAuthUsecase_Login(t *testing.T) {
	hasher := newTestHasher(t)
	hashed, err := hasher.Hash("password123")
	require.NoError(t, err)
	testUser := &entity.User{ID: 1, Name: "Test", Email: "test@example.com", PasswordHash: hashed}

	findTestUser := func(ctx context.Context, email string) (*entity.User, error) {
		if email == testUser.Email {
			return testUser, nil
		}
		return nil, domain.ErrUserNotFound
	}

	t.Run("successful login", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		mockTokens := &mockTokenIssuer{
			IssueFunc: func(email string) (string, error) {
				assert.Equal(t, testUser.Email, email)
				return "mock-jwt-token", nil
			},
		}

		uc := NewAuthUsecase(mockRepo, hasher, mockTokens)
		token, err := uc.Login(context.Background(), "test@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, "mock-jwt-token", token)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})

		_, errUnknown := uc.Login(context.Background(), "wrong@example.com", "password123")
		_, errWrong := uc.Login(context.Background(), "test@example.com", "wrong-password")

		assert.ErrorIs(t, errUnknown, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, domain.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("email is case-sensitive", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})

		_, err := uc.Login(context.Background(), "TEST@example.com", "password123")

		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("repository failure is not reported as bad credentials", func(t *testing.T) {
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return nil, errors.New("connection refused")
			},
		}
		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})

		_, err := uc.Login(context.Background(), "test@example.com", "password123")

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrInvalidCredentials)
	})

	t.Run("token generation failure", func(t *testing.T) {
		mockRepo := &mockUserRepository{FindByEmailFunc: findTestUser}
		mockTokens := &mockTokenIssuer{
			IssueFunc: func(email string) (string, error) {
				return "", errors.New("failed to sign token")
			},
		}

		uc := NewAuthUsecase(mockRepo, hasher, mockTokens)
		_, err := uc.Login(context.Background(), "test@example.com", "password123")

		assert.EqualError(t, err, "failed to generate token: failed to sign token")
	})

	t.Run("legacy bcrypt hash is upgraded", func(t *testing.T) {
		legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		require.NoError(t, err)
		legacyUser := &entity.User{ID: 9, Email: "legacy@example.com", PasswordHash: string(legacy)}

		var upgraded string
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return legacyUser, nil
			},
			UpdatePasswordHashFunc: func(ctx context.Context, id uint, hash string) error {
				assert.Equal(t, uint(9), id)
				upgraded = hash
				return nil
			},
		}

		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})
		_, err = uc.Login(context.Background(), "legacy@example.com", "password123")

		require.NoError(t, err)
		require.NotEmpty(t, upgraded)
		assert.False(t, hasher.NeedsRehash(upgraded))
		assert.NoError(t, hasher.Verify(upgraded, "password123"))
	})

	t.Run("failed upgrade does not fail login", func(t *testing.T) {
		legacy, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		require.NoError(t, err)
		mockRepo := &mockUserRepository{
			FindByEmailFunc: func(ctx context.Context, email string) (*entity.User, error) {
				return &entity.User{ID: 9, Email: email, PasswordHash: string(legacy)}, nil
			},
			UpdatePasswordHashFunc: func(ctx context.Context, id uint, hash string) error {
				return errors.New("read-only database")
			},
		}

		uc := NewAuthUsecase(mockRepo, hasher, &mockTokenIssuer{})
		token, err := uc.Login(context.Background(), "legacy@example.com", "password123")

		require.NoError(t, err)
		assert.Equal(t, "mock-jwt-token", token)
	})
}
