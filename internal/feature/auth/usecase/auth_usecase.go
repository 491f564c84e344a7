// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"loan_backend/internal/feature/auth/domain"
	"loan_backend/internal/feature/auth/domain/entity"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーを永続化し、IDを設定します。
	// メールアドレスが登録済みの場合は domain.ErrDuplicateIdentity を返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合は domain.ErrUserNotFound を返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合は domain.ErrUserNotFound を返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// UpdatePasswordHash は保存済みのパスワードハッシュを置き換えます。
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
}

// PasswordHasher はパスワードハッシュの生成と照合を行います。
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(encoded, password string) error
	VerifyDummy(password string) error
	NeedsRehash(encoded string) bool
}

// TokenIssuer はメールアドレスを主体とするアクセストークンを発行します。
type TokenIssuer interface {
	Issue(email string) (string, error)
}

// authUsecase はユーザー登録とログインを実装します。
type authUsecase struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, hasher PasswordHasher, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:  users,
		hasher: hasher,
		tokens: tokens,
	}
}

// Register はパスワードをハッシュ化してユーザーを登録し、IDを返します。
func (u *authUsecase) Register(ctx context.Context, name, email, password string) (uint, error) {
	hashed, err := u.hasher.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{Name: name, Email: email, PasswordHash: hashed}
	if err := u.users.Create(ctx, user); err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Login は認証情報を検証し、署名済みアクセストークンを返します。
// 未登録のメールアドレスでもパスワード誤りでも domain.ErrInvalidCredentials を返し、
// どちらの場合もハッシュ照合を1回実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string) (string, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", fmt.Errorf("failed to load user: %w", err)
		}
		_ = u.hasher.VerifyDummy(password)
		return "", domain.ErrInvalidCredentials
	}

	if err := u.hasher.Verify(user.PasswordHash, password); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	if u.hasher.NeedsRehash(user.PasswordHash) {
		u.upgradeHash(ctx, user, password)
	}

	token, err := u.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// upgradeHash は検証済みのパスワードを現在の方式で再ハッシュ化します。
// 失敗しても旧ハッシュはそのまま残り、引き続き照合できます。
func (u *authUsecase) upgradeHash(ctx context.Context, user *entity.User, password string) {
	hashed, err := u.hasher.Hash(password)
	if err != nil {
		slog.Warn("password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	if err := u.users.UpdatePasswordHash(ctx, user.ID, hashed); err != nil {
		slog.Warn("password rehash not stored", "user_id", user.ID, "error", err)
		return
	}
	slog.Info("password hash upgraded", "user_id", user.ID)
}
