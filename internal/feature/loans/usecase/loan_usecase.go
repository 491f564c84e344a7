// Package usecase はローン台帳のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"

	authdomain "loan_backend/internal/feature/auth/domain"
	authentity "loan_backend/internal/feature/auth/domain/entity"
	"loan_backend/internal/feature/loans/domain"
	"loan_backend/internal/feature/loans/domain/entity"
)

const (
	// MinTerm は返済期間の下限（月）です。
	MinTerm = 6
	// MaxTerm は返済期間の上限（月）です。
	MaxTerm = 36
	// IncomeMultiplier は月収に対する申込額の上限倍率です。
	IncomeMultiplier = 5
	// AutoApproveLimit 以下の申込額は即時承認されます。
	AutoApproveLimit = 500
)

// LoanRepository はローンの永続化レイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type LoanRepository interface {
	// Create はローンを保存し、採番されたIDをloan.IDに設定します。
	Create(ctx context.Context, loan *entity.Loan) error
	// FindByID はIDでローンを取得します。存在しない場合はdomain.ErrLoanNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.Loan, error)
	// UpdateStatus はステータスを更新します。該当行がなくてもエラーにはしません。
	UpdateStatus(ctx context.Context, id uint, status entity.Status) error
	// ListByUser は利用者のローンを作成順に返します。
	ListByUser(ctx context.Context, userID uint) ([]entity.Loan, error)
}

// UserReader はローン一覧に添える利用者情報を取得します。
type UserReader interface {
	FindByID(ctx context.Context, id uint) (*authentity.User, error)
}

type loanUsecase struct {
	loans LoanRepository
	users UserReader
}

// NewLoanUsecase はloanUsecaseの新しいインスタンスを生成します。
func NewLoanUsecase(loans LoanRepository, users UserReader) *loanUsecase {
	return &loanUsecase{loans: loans, users: users}
}

// Apply はローン申込を検証して保存します。
// 検証は申込額、返済期間の順に行い、最初に違反した規則のエラーを返します。
func (u *loanUsecase) Apply(ctx context.Context, userID uint, amount float64, term int, monthlyIncome float64) (uint, error) {
	if amount > monthlyIncome*IncomeMultiplier {
		return 0, domain.ErrExcessiveAmount
	}
	if term < MinTerm || term > MaxTerm {
		return 0, domain.ErrInvalidTerm
	}

	status := entity.StatusPending
	if amount <= AutoApproveLimit {
		status = entity.StatusApproved
	}

	loan := &entity.Loan{
		UserID:        userID,
		Amount:        amount,
		Term:          term,
		MonthlyIncome: monthlyIncome,
		Status:        status,
		Balance:       amount,
	}
	if err := u.loans.Create(ctx, loan); err != nil {
		return 0, fmt.Errorf("failed to create loan: %w", err)
	}
	return loan.ID, nil
}

// UpdateStatus はローンのステータスをApprovedまたはRejectedに変更します。
// 所有者の確認は行いません。同じ値での再更新も成功します。
func (u *loanUsecase) UpdateStatus(ctx context.Context, loanID uint, status string) (entity.Status, error) {
	next, err := entity.ParseDecision(status)
	if err != nil {
		return "", err
	}
	if err := u.loans.UpdateStatus(ctx, loanID, next); err != nil {
		return "", fmt.Errorf("failed to update loan status: %w", err)
	}
	return next, nil
}

// ListForUser は利用者の情報と、その利用者のローンのみを作成順で返します。
func (u *loanUsecase) ListForUser(ctx context.Context, userID uint) (entity.Profile, []entity.Loan, error) {
	loans, err := u.loans.ListByUser(ctx, userID)
	if err != nil {
		return entity.Profile{}, nil, fmt.Errorf("failed to list loans: %w", err)
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return entity.Profile{}, nil, err
		}
		return entity.Profile{}, nil, fmt.Errorf("failed to load user: %w", err)
	}

	return entity.Profile{Name: user.Name, Email: user.Email}, loans, nil
}
