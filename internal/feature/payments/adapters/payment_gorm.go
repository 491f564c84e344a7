package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"loan_backend/internal/feature/payments/domain/entity"
	"loan_backend/internal/feature/payments/usecase"
)

type paymentGorm struct {
	db *gorm.DB
}

var _ usecase.PaymentRepository = (*paymentGorm)(nil)

func NewPaymentRepository(db *gorm.DB) *paymentGorm {
	return &paymentGorm{db: db}
}

type PaymentModel struct {
	ID     uint      `gorm:"primaryKey"`
	LoanID uint      `gorm:"not null;index"`
	Amount float64   `gorm:"not null"`
	Date   time.Time `gorm:"not null"`
}

func (PaymentModel) TableName() string {
	return "payments"
}

func (m PaymentModel) ToEntity() entity.Payment {
	return entity.Payment{
		ID:     m.ID,
		LoanID: m.LoanID,
		Amount: m.Amount,
		Date:   m.Date.UTC(),
	}
}

func (r *paymentGorm) Create(ctx context.Context, p *entity.Payment) error {
	if p == nil {
		return errors.New("payment is nil")
	}
	m := PaymentModel{LoanID: p.LoanID, Amount: p.Amount, Date: p.Date}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.ID = m.ID
	return nil
}

func (r *paymentGorm) ListByLoan(ctx context.Context, loanID uint) ([]entity.Payment, error) {
	var rows []PaymentModel
	if err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Payment, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToEntity())
	}
	return out, nil
}
