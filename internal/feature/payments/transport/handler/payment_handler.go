// Package handler はpaymentsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"loan_backend/internal/api"
	authdomain "loan_backend/internal/feature/auth/domain"
	loandomain "loan_backend/internal/feature/loans/domain"
	"loan_backend/internal/feature/payments/domain"
	"loan_backend/internal/feature/payments/domain/entity"
	"loan_backend/internal/feature/payments/transport/http/dto"
	jwtmw "loan_backend/internal/platform/jwt"
)

// PaymentUsecase はハンドラーが必要とする返済操作を定義します。
type PaymentUsecase interface {
	Record(ctx context.Context, userID, loanID uint, amount float64) (*entity.Payment, error)
	List(ctx context.Context, userID, loanID uint) ([]entity.Payment, error)
}

// PaymentHandler はローン返済のHTTPリクエストを処理します。
type PaymentHandler struct {
	uc PaymentUsecase
}

// NewPaymentHandler はPaymentHandlerの新しいインスタンスを生成します。
func NewPaymentHandler(uc PaymentUsecase) *PaymentHandler {
	return &PaymentHandler{uc: uc}
}

// Record は POST /loans/:loan_id/payments を処理します。
func (h *PaymentHandler) Record(c *gin.Context) {
	userID, loanID, ok := h.target(c)
	if !ok {
		return
	}

	var req dto.RecordPaymentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("payment validation failed", "error", err, "user_id", userID)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	p, err := h.uc.Record(c.Request.Context(), userID, loanID, *req.Amount)
	if err != nil {
		h.fail(c, err, userID, loanID)
		return
	}

	slog.Info("payment recorded", "payment_id", p.ID, "loan_id", loanID, "user_id", userID)
	c.JSON(http.StatusOK, toRes(*p))
}

// List は GET /loans/:loan_id/payments を処理します。
func (h *PaymentHandler) List(c *gin.Context) {
	userID, loanID, ok := h.target(c)
	if !ok {
		return
	}

	ps, err := h.uc.List(c.Request.Context(), userID, loanID)
	if err != nil {
		h.fail(c, err, userID, loanID)
		return
	}

	out := make([]dto.PaymentRes, 0, len(ps))
	for _, p := range ps {
		out = append(out, toRes(p))
	}
	c.JSON(http.StatusOK, out)
}

// target は呼び出し元ユーザーとローンIDを読み取ります。どちらかが欠けていればエラーレスポンスを書き込みます。
func (h *PaymentHandler) target(c *gin.Context) (uint, uint, bool) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: authdomain.ErrMissingCredential.Error()})
		return 0, 0, false
	}
	loanID, err := strconv.ParseUint(c.Param("loan_id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid loan id"})
		return 0, 0, false
	}
	return userID, uint(loanID), true
}

func (h *PaymentHandler) fail(c *gin.Context, err error, userID, loanID uint) {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, loandomain.ErrLoanNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: loandomain.ErrLoanNotFound.Error()})
	default:
		slog.Error("payment request failed", "error", err, "loan_id", loanID, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.InternalError})
	}
}

func toRes(p entity.Payment) dto.PaymentRes {
	return dto.PaymentRes{
		PaymentID: p.ID,
		LoanID:    p.LoanID,
		Amount:    p.Amount,
		Date:      p.Date.UTC().Format(time.RFC3339),
	}
}
