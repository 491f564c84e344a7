// Package domain は返済記録のドメインエラーを定義します。
package domain

import "errors"

// ErrInvalidAmount は返済額が0以下の場合に返されます。
var ErrInvalidAmount = errors.New("payment amount must be positive")
