// Package auth はユーザー登録・ログインのドメインロジックを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Marstach-svg/maple/internal/model"
	"github.com/Marstach-svg/maple/internal/repository"
)

// bcryptCost はパスワードハッシュのコストファクタ。
const bcryptCost = 12

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

// EmailAllowlist は登録・ログインを許可するメールアドレスの判定インターフェース。
// config.Configが実装する。
type EmailAllowlist interface {
	IsEmailAllowed(email string) bool
}

// Sanitizer は表示名などユーザー入力テキストの無害化インターフェース。
type Sanitizer interface {
	Sanitize(input string) string
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	allowlist EmailAllowlist
	sanitizer Sanitizer
}

// NewService はServiceを生成する。
func NewService(userRepo repository.UserRepository, allowlist EmailAllowlist, sanitizer Sanitizer) *Service {
	return &Service{
		userRepo:  userRepo,
		allowlist: allowlist,
		sanitizer: sanitizer,
	}
}

// Register は新規ユーザーを登録する。
// 許可リスト外のメールアドレスは拒否し、登録済みメールアドレスはエラーを返す。
func (s *Service) Register(ctx context.Context, email, name, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	// 1. 許可リストの検証
	if !s.allowlist.IsEmailAllowed(email) {
		return nil, model.NewEmailNotAllowedError()
	}

	// 2. 入力のバリデーション
	if !strings.Contains(email, "@") {
		return nil, model.NewValidationError("有効なメールアドレスを入力してください")
	}
	if len(password) < minPasswordLength {
		return nil, model.NewValidationError(fmt.Sprintf("パスワードは%d文字以上である必要があります", minPasswordLength))
	}

	// 3. 重複チェック
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewEmailTakenError()
	}

	// 4. パスワードハッシュを生成してユーザーを作成
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("パスワードのハッシュ化に失敗しました: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         s.sanitizer.Sanitize(name),
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 重複チェックとinsertの間に同じメールで登録された場合
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewEmailTakenError()
		}
		return nil, fmt.Errorf("ユーザーの作成に失敗しました: %w", err)
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Login はメールアドレスとパスワードを検証する。
// 許可リスト外のメールアドレスはパスワードの正否にかかわらず拒否する。
// メールアドレスの存在有無を漏らさないよう、未登録と
// パスワード不一致は同じエラーメッセージを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	// 1. 許可リストの検証
	if !s.allowlist.IsEmailAllowed(email) {
		return nil, model.NewEmailNotAllowedError()
	}

	// 2. ユーザーの検索
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの検索に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	// 3. パスワードの検証
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// CurrentUser は指定IDのユーザーを取得する。
// トークン発行後に削除されたユーザーの場合はエラーを返す。
func (s *Service) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}
