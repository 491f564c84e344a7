// Package handler はloansフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"loan_backend/internal/api"
	authdomain "loan_backend/internal/feature/auth/domain"
	"loan_backend/internal/feature/loans/domain"
	"loan_backend/internal/feature/loans/domain/entity"
	"loan_backend/internal/feature/loans/transport/http/dto"
	jwtmw "loan_backend/internal/platform/jwt"
)

// LoanUsecase はハンドラーが利用するローン操作を定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type LoanUsecase interface {
	Apply(ctx context.Context, userID uint, amount float64, term int, monthlyIncome float64) (uint, error)
	UpdateStatus(ctx context.Context, loanID uint, status string) (entity.Status, error)
	ListForUser(ctx context.Context, userID uint) (entity.Profile, []entity.Loan, error)
}

// LoanHandler はローン関連のHTTPリクエストを処理します。
type LoanHandler struct {
	uc LoanUsecase
}

// NewLoanHandler はLoanHandlerの新しいインスタンスを生成します。
func NewLoanHandler(uc LoanUsecase) *LoanHandler {
	return &LoanHandler{uc: uc}
}

// Apply は認証済み利用者のローン申込を受け付けます。
//
// エンドポイント例:
// POST /loans/apply {"amount":400,"term":12,"monthly_income":1000}
func (h *LoanHandler) Apply(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: authdomain.ErrMissingCredential.Error()})
		return
	}

	var req dto.ApplyLoanReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("loan application validation failed", "error", err, "user_id", userID)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}

	id, err := h.uc.Apply(c.Request.Context(), userID, req.Amount, req.Term, req.MonthlyIncome)
	if err != nil {
		if errors.Is(err, domain.ErrExcessiveAmount) || errors.Is(err, domain.ErrInvalidTerm) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("loan application failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.InternalError})
		return
	}

	slog.Info("loan application submitted", "loan_id", id, "user_id", userID)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Loan application submitted successfully"})
}

// UpdateStatus はローンのステータスを変更します。認証は要求しません。
//
// エンドポイント例:
// PUT /loans/3/status?status=Approved
func (h *LoanHandler) UpdateStatus(c *gin.Context) {
	loanID, err := strconv.ParseUint(c.Param("loan_id"), 10, 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid loan id"})
		return
	}

	status, err := h.uc.UpdateStatus(c.Request.Context(), uint(loanID), c.Query("status"))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("loan status update failed", "error", err, "loan_id", loanID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.InternalError})
		return
	}

	slog.Info("loan status updated", "loan_id", loanID, "status", status, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, api.MessageResponse{Message: fmt.Sprintf("Loan %d status updated to %s", loanID, status)})
}

// List は認証済み利用者の情報とローン一覧を返します。
func (h *LoanHandler) List(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: authdomain.ErrMissingCredential.Error()})
		return
	}

	profile, loans, err := h.uc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: authdomain.ErrUserNotFound.Error()})
			return
		}
		slog.Error("loan listing failed", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: api.InternalError})
		return
	}

	out := dto.LoanListRes{
		User:  dto.UserRes{Name: profile.Name, Email: profile.Email},
		Loans: make([]dto.LoanSummaryRes, 0, len(loans)),
	}
	for _, l := range loans {
		out.Loans = append(out.Loans, dto.LoanSummaryRes{
			LoanID:           l.ID,
			Amount:           l.Amount,
			Term:             l.Term,
			Status:           string(l.Status),
			RemainingBalance: l.Balance,
		})
	}

	c.JSON(http.StatusOK, out)
}
