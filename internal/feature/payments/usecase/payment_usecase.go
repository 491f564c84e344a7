// Package usecase は返済記録の登録と一覧のビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	loandomain "loan_backend/internal/feature/loans/domain"
	loanentity "loan_backend/internal/feature/loans/domain/entity"
	"loan_backend/internal/feature/payments/domain"
	"loan_backend/internal/feature/payments/domain/entity"
)

// PaymentRepository は返済記録の永続化を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PaymentRepository interface {
	// Create は返済記録を保存し、採番したIDを設定します。
	Create(ctx context.Context, p *entity.Payment) error
	// ListByLoan はローンの返済記録を登録順に返します。
	ListByLoan(ctx context.Context, loanID uint) ([]entity.Payment, error)
}

// LoanReader は返済先のローンを取得します。
type LoanReader interface {
	FindByID(ctx context.Context, id uint) (*loanentity.Loan, error)
}

type paymentUsecase struct {
	payments PaymentRepository
	loans    LoanReader
	now      func() time.Time
}

// NewPaymentUsecase はpaymentUsecaseの新しいインスタンスを生成します。
func NewPaymentUsecase(payments PaymentRepository, loans LoanReader) *paymentUsecase {
	return &paymentUsecase{payments: payments, loans: loans, now: time.Now}
}

// Record はuserIDが所有するローンに返済記録を追加します。
// 存在しないローンや他人のローンは loandomain.ErrLoanNotFound になります。
func (u *paymentUsecase) Record(ctx context.Context, userID, loanID uint, amount float64) (*entity.Payment, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if err := u.checkOwner(ctx, userID, loanID); err != nil {
		return nil, err
	}

	p := &entity.Payment{
		LoanID: loanID,
		Amount: amount,
		Date:   u.now().UTC().Truncate(time.Second),
	}
	if err := u.payments.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}
	return p, nil
}

// List はuserIDが所有するローンの返済記録を返します。
func (u *paymentUsecase) List(ctx context.Context, userID, loanID uint) ([]entity.Payment, error) {
	if err := u.checkOwner(ctx, userID, loanID); err != nil {
		return nil, err
	}
	ps, err := u.payments.ListByLoan(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return ps, nil
}

func (u *paymentUsecase) checkOwner(ctx context.Context, userID, loanID uint) error {
	loan, err := u.loans.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, loandomain.ErrLoanNotFound) {
			return loandomain.ErrLoanNotFound
		}
		return fmt.Errorf("failed to load loan: %w", err)
	}
	if loan.UserID != userID {
		return loandomain.ErrLoanNotFound
	}
	return nil
}
