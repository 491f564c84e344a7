package adapters

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"loan_backend/internal/feature/auth/domain"
	"loan_backend/internal/feature/auth/domain/entity"
)

// setupTestDB prepares an in-memory SQLite database for testing.
// A single connection keeps every goroutine on the same in-memory database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(&entity.User{})
	require.NoError(t, err, "failed to migrate table")

	return db
}

func TestNewUserGorm(t *testing.T) {
	db := setupTestDB(t)

	repo := NewUserGorm(db)

	assert.NotNil(t, repo, "repository is nil")
	assert.NotNil(t, repo.db, "database connection is nil")
}

func TestUserGorm_Create(t *testing.T) {
	t.Run("successful user creation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		user := &entity.User{Name: "Test", Email: "test@example.com", PasswordHash: "hashed_password"}

		err := repo.Create(context.Background(), user)

		assert.NoError(t, err, "failed to create user")
		assert.NotZero(t, user.ID, "ID is not set")
		assert.False(t, user.CreatedAt.IsZero(), "CreatedAt is not set")
	})

	t.Run("distinct emails get distinct ids", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		seen := map[uint]bool{}
		for i := 0; i < 5; i++ {
			u := &entity.User{Name: "U", Email: fmt.Sprintf("user%d@example.com", i), PasswordHash: "h"}
			require.NoError(t, repo.Create(context.Background(), u))
			assert.False(t, seen[u.ID], "duplicate id %d", u.ID)
			seen[u.ID] = true
		}
	})

	t.Run("duplicate email error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		err := repo.Create(context.Background(), &entity.User{Name: "A", Email: "duplicate@example.com", PasswordHash: "p1"})
		require.NoError(t, err, "failed to create first user")

		err = repo.Create(context.Background(), &entity.User{Name: "B", Email: "duplicate@example.com", PasswordHash: "p2"})

		assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	})

	t.Run("email comparison is case-sensitive", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		require.NoError(t, repo.Create(context.Background(), &entity.User{Name: "A", Email: "case@example.com", PasswordHash: "p"}))

		err := repo.Create(context.Background(), &entity.User{Name: "B", Email: "CASE@example.com", PasswordHash: "p"})

		assert.NoError(t, err)
	})

	t.Run("nil user error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		err := repo.Create(context.Background(), nil)

		assert.Error(t, err, "should return error for nil user")
	})
}

// TestUserGorm_Create_Concurrent checks that exactly one of many concurrent
// registrations with the same email succeeds.
func TestUserGorm_Create_Concurrent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserGorm(db)

	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		successes  int
		duplicates int
		others     []error
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(context.Background(), &entity.User{
				Name:         fmt.Sprintf("racer-%d", i),
				Email:        "race@example.com",
				PasswordHash: "h",
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, domain.ErrDuplicateIdentity):
				duplicates++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, duplicates)
}

func TestUserGorm_FindByEmail(t *testing.T) {
	t.Run("find user by email successfully", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		expected := &entity.User{Name: "Find", Email: "find@example.com", PasswordHash: "hashed_password"}
		require.NoError(t, repo.Create(context.Background(), expected), "failed to create test data")

		found, err := repo.FindByEmail(context.Background(), "find@example.com")

		require.NoError(t, err, "failed to find user")
		assert.Equal(t, expected.ID, found.ID, "ID does not match")
		assert.Equal(t, "Find", found.Name, "name does not match")
		assert.Equal(t, expected.PasswordHash, found.PasswordHash, "password hash does not match")
	})

	t.Run("email not found error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		found, err := repo.FindByEmail(context.Background(), "notfound@example.com")

		assert.ErrorIs(t, err, domain.ErrUserNotFound, "should return ErrUserNotFound")
		assert.Nil(t, found, "user should be nil")
	})

	t.Run("find correct user when multiple users exist", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		users := []*entity.User{
			{Name: "One", Email: "user1@example.com", PasswordHash: "pass1"},
			{Name: "Two", Email: "user2@example.com", PasswordHash: "pass2"},
			{Name: "Three", Email: "user3@example.com", PasswordHash: "pass3"},
		}
		for _, u := range users {
			require.NoError(t, repo.Create(context.Background(), u), "failed to create test data")
		}

		found, err := repo.FindByEmail(context.Background(), "user2@example.com")

		require.NoError(t, err, "failed to find user")
		assert.Equal(t, users[1].ID, found.ID, "ID does not match")
		assert.Equal(t, "pass2", found.PasswordHash, "password hash does not match")
	})
}

func TestUserGorm_FindByID(t *testing.T) {
	t.Run("find user by ID successfully", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		expected := &entity.User{Name: "ById", Email: "findbyid@example.com", PasswordHash: "hashed_password"}
		require.NoError(t, repo.Create(context.Background(), expected), "failed to create test data")

		found, err := repo.FindByID(context.Background(), expected.ID)

		require.NoError(t, err, "failed to find user")
		assert.Equal(t, expected.Email, found.Email, "email does not match")
		assert.Equal(t, expected.Name, found.Name, "name does not match")
	})

	t.Run("ID not found error", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		found, err := repo.FindByID(context.Background(), 999)

		assert.ErrorIs(t, err, domain.ErrUserNotFound, "should return ErrUserNotFound")
		assert.Nil(t, found, "user should be nil")
	})
}

func TestUserGorm_UpdatePasswordHash(t *testing.T) {
	t.Run("replaces the stored hash", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		u := &entity.User{Name: "Up", Email: "up@example.com", PasswordHash: "old"}
		require.NoError(t, repo.Create(context.Background(), u))

		err := repo.UpdatePasswordHash(context.Background(), u.ID, "new")
		require.NoError(t, err)

		found, err := repo.FindByID(context.Background(), u.ID)
		require.NoError(t, err)
		assert.Equal(t, "new", found.PasswordHash)
	})

	t.Run("unknown user", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewUserGorm(db)

		err := repo.UpdatePasswordHash(context.Background(), 42, "new")

		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
