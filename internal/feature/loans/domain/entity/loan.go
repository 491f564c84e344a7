// Package entity はローン台帳のエンティティを定義します。
package entity

import "loan_backend/internal/feature/loans/domain"

// Status はローンの審査状態です。
type Status string

const (
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

// ParseDecision はステータス更新で受け付ける値（Approved/Rejected）を解釈します。
// Pendingへの差し戻しは受け付けません。
func ParseDecision(s string) (Status, error) {
	switch Status(s) {
	case StatusApproved, StatusRejected:
		return Status(s), nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

// Loan はローン申込1件を表します。
// Balanceは申込額で初期化され、以後減らされることはありません。
type Loan struct {
	ID            uint    `json:"id"`
	UserID        uint    `json:"user_id"`
	Amount        float64 `json:"amount"`
	Term          int     `json:"term"`
	MonthlyIncome float64 `json:"monthly_income"`
	Status        Status  `json:"status"`
	Balance       float64 `json:"balance"`
}

// Profile はローン一覧に添える利用者情報です。
type Profile struct {
	Name  string
	Email string
}
