// Package dto はloansフィーチャーのHTTP入出力を定義します。
package dto

// ApplyLoanReq は POST /loans/apply のJSONボディです。
// 返済期間と月収の範囲チェックはusecaseで行います。
type ApplyLoanReq struct {
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Term          int     `json:"term"`
	MonthlyIncome float64 `json:"monthly_income"`
}

// UserRes は GET /loans のuser要素です。
type UserRes struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoanSummaryRes は GET /loans のloans配列の要素です。
type LoanSummaryRes struct {
	LoanID           uint    `json:"loan_id"`
	Amount           float64 `json:"amount"`
	Term             int     `json:"term"`
	Status           string  `json:"status"`
	RemainingBalance float64 `json:"remaining_balance"`
}

// LoanListRes は GET /loans のレスポンスです。
type LoanListRes struct {
	User  UserRes          `json:"user"`
	Loans []LoanSummaryRes `json:"loans"`
}
