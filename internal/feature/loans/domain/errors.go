// Package domain はローン台帳のドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrExcessiveAmount は申込額が月収の5倍を超える場合に返されます。
	ErrExcessiveAmount = errors.New("loan amount cannot exceed 5x monthly income")
	// ErrInvalidTerm は返済期間が6〜36ヶ月の範囲外の場合に返されます。
	ErrInvalidTerm = errors.New("loan term must be between 6 and 36 months")
	// ErrInvalidStatus は更新先ステータスがApproved/Rejected以外の場合に返されます。
	ErrInvalidStatus = errors.New("invalid status")
	// ErrLoanNotFound はローンが存在しない場合に返されます。
	ErrLoanNotFound = errors.New("loan not found")
)
