package usecase

import (
	"context"
	"errors"
	"fmt"

	"loan_backend/internal/feature/auth/domain"
)

// TokenVerifier はアクセストークンを検証し、主体（メールアドレス）を返します。
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// AuthGate はBearerトークンをユーザーIDに解決します。
// トークンにはメールアドレスが入っているため、リクエストごとにユーザーの存在を確認します。
type AuthGate struct {
	users    UserRepository
	verifier TokenVerifier
}

// NewAuthGate はAuthGateを生成します。
func NewAuthGate(users UserRepository, verifier TokenVerifier) *AuthGate {
	return &AuthGate{users: users, verifier: verifier}
}

// Authenticate はトークンの発行先ユーザーのIDを返します。
func (g *AuthGate) Authenticate(ctx context.Context, token string) (uint, error) {
	if token == "" {
		return 0, domain.ErrMissingCredential
	}

	email, err := g.verifier.Verify(token)
	if err != nil {
		return 0, err
	}

	user, err := g.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return 0, domain.ErrUnknownSubject
		}
		return 0, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user.ID, nil
}
