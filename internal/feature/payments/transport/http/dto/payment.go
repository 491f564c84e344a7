// Package dto はpaymentsフィーチャーのHTTP入出力を定義します。
package dto

// RecordPaymentReq は POST /loans/:loan_id/payments のJSONボディです。
// 金額の正負はusecaseで検証します。
type RecordPaymentReq struct {
	Amount *float64 `json:"amount" binding:"required"`
}

// PaymentRes はレスポンス中の返済記録1件です。
type PaymentRes struct {
	PaymentID uint    `json:"payment_id"`
	LoanID    uint    `json:"loan_id"`
	Amount    float64 `json:"amount"`
	Date      string  `json:"date"`
}
