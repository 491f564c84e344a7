package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"loan_backend/internal/feature/loans/domain"
	"loan_backend/internal/feature/loans/domain/entity"
	"loan_backend/internal/feature/loans/usecase"
)

type loanGorm struct {
	db *gorm.DB
}

var _ usecase.LoanRepository = (*loanGorm)(nil)

func NewLoanRepository(db *gorm.DB) *loanGorm {
	return &loanGorm{db: db}
}

type LoanModel struct {
	ID            uint    `gorm:"primaryKey"`
	UserID        uint    `gorm:"not null;index"`
	Amount        float64 `gorm:"not null"`
	Term          int     `gorm:"not null"`
	MonthlyIncome float64 `gorm:"not null"`
	Status        string  `gorm:"size:16;not null;default:Pending"`
	Balance       float64 `gorm:"not null"`
}

func (LoanModel) TableName() string {
	return "loans"
}

func toModel(e *entity.Loan) LoanModel {
	return LoanModel{
		ID:            e.ID,
		UserID:        e.UserID,
		Amount:        e.Amount,
		Term:          e.Term,
		MonthlyIncome: e.MonthlyIncome,
		Status:        string(e.Status),
		Balance:       e.Balance,
	}
}

func (m LoanModel) ToEntity() entity.Loan {
	return entity.Loan{
		ID:            m.ID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Term:          m.Term,
		MonthlyIncome: m.MonthlyIncome,
		Status:        entity.Status(m.Status),
		Balance:       m.Balance,
	}
}

func (r *loanGorm) Create(ctx context.Context, loan *entity.Loan) error {
	if loan == nil {
		return errors.New("loan is nil")
	}
	m := toModel(loan)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	loan.ID = m.ID
	return nil
}

func (r *loanGorm) FindByID(ctx context.Context, id uint) (*entity.Loan, error) {
	var m LoanModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}
	e := m.ToEntity()
	return &e, nil
}

// UpdateStatus はstatus列のみ更新します。該当行がないIDでもエラーにしません。
func (r *loanGorm) UpdateStatus(ctx context.Context, id uint, status entity.Status) error {
	return r.db.WithContext(ctx).
		Model(&LoanModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *loanGorm) ListByUser(ctx context.Context, userID uint) ([]entity.Loan, error) {
	var rows []LoanModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Loan, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.ToEntity())
	}
	return out, nil
}
