package router

import (
	"github.com/gin-gonic/gin"

	authhandler "loan_backend/internal/feature/auth/transport/handler"
	loanhandler "loan_backend/internal/feature/loans/transport/handler"
	paymenthandler "loan_backend/internal/feature/payments/transport/handler"
	"loan_backend/internal/platform/http/middleware"
	jwtmw "loan_backend/internal/platform/jwt"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *authhandler.AuthHandler
	Loans    *loanhandler.LoanHandler
	Payments *paymenthandler.PaymentHandler
	Health   gin.HandlerFunc
	// Authenticator resolves bearer tokens for the protected group.
	Authenticator jwtmw.Authenticator
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.RequestLogger())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)
	// 新規ユーザー登録
	r.POST("/register", h.Auth.Register)
	// ログイン（JWT 発行）
	r.POST("/token", h.Auth.Login)
	// ステータス変更は所有者確認なし
	r.PUT("/loans/:loan_id/status", h.Loans.UpdateStatus)

	// 認証必須のルート
	auth := r.Group("/loans")
	auth.Use(jwtmw.AuthRequired(h.Authenticator))
	{
		auth.POST("/apply", h.Loans.Apply)
		auth.GET("", h.Loans.List)
		auth.POST("/:loan_id/payments", h.Payments.Record)
		auth.GET("/:loan_id/payments", h.Payments.List)
	}

	return r
}
