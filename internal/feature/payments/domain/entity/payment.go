// Package entity は返済記録のエンティティを定義します。
package entity

import "time"

// Payment はローンへの入金を追記のみで記録します。
// 返済を記録してもローンの残高は変わりません。
type Payment struct {
	ID     uint      `json:"id"`
	LoanID uint      `json:"loan_id"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`
}
