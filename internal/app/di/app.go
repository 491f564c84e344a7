// Package di provides dependency injection factories for creating application components.
package di

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"loan_backend/internal/app/router"
	authadapters "loan_backend/internal/feature/auth/adapters"
	authhandler "loan_backend/internal/feature/auth/transport/handler"
	authusecase "loan_backend/internal/feature/auth/usecase"
	loanadapters "loan_backend/internal/feature/loans/adapters"
	loanhandler "loan_backend/internal/feature/loans/transport/handler"
	loanusecase "loan_backend/internal/feature/loans/usecase"
	paymentadapters "loan_backend/internal/feature/payments/adapters"
	paymenthandler "loan_backend/internal/feature/payments/transport/handler"
	paymentusecase "loan_backend/internal/feature/payments/usecase"
	"loan_backend/internal/platform/cache"
	"loan_backend/internal/platform/config"
	"loan_backend/internal/platform/http/handler"
	jwtmw "loan_backend/internal/platform/jwt"
	"loan_backend/internal/platform/password"
)

// NewLoanRepository creates a LoanRepository implementation.
// If Redis is available, the gorm repository is wrapped with a list cache.
func NewLoanRepository(rdb *redis.Client, ttl time.Duration, db *gorm.DB) loanusecase.LoanRepository {
	repo := loanadapters.NewLoanRepository(db)
	if rdb != nil {
		return cache.NewCachingLoanRepository(rdb, ttl, repo, "loans")
	}
	return repo
}

// NewEngine wires repositories, usecases and handlers into a ready gin engine.
// rdb may be nil.
func NewEngine(cfg config.Config, db *gorm.DB, rdb *redis.Client) (*gin.Engine, error) {
	issuer, err := jwtmw.NewIssuer(cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}
	hasher, err := password.NewHasher(cfg.Password.Params())
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	loanRepo := NewLoanRepository(rdb, cfg.Redis.TTL, db)
	paymentRepo := paymentadapters.NewPaymentRepository(db)

	// Usecase
	authUC := authusecase.NewAuthUsecase(userRepo, hasher, issuer)
	gate := authusecase.NewAuthGate(userRepo, issuer)
	loanUC := loanusecase.NewLoanUsecase(loanRepo, userRepo)
	paymentUC := paymentusecase.NewPaymentUsecase(paymentRepo, loanRepo)

	return router.NewRouter(router.Handlers{
		Auth:          authhandler.NewAuthHandler(authUC),
		Loans:         loanhandler.NewLoanHandler(loanUC),
		Payments:      paymenthandler.NewPaymentHandler(paymentUC),
		Health:        handler.Health(pinger(sqlDB)),
		Authenticator: gate,
	}), nil
}

func pinger(db *sql.DB) handler.Pinger {
	if db == nil {
		return nil
	}
	return db
}
