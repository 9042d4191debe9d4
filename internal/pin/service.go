// Package pin は訪問記録ピンのドメインロジックを提供する。
package pin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Marstach-svg/maple/internal/model"
	"github.com/Marstach-svg/maple/internal/repository"
)

// Sanitizer はピンのテキストフィールドの無害化インターフェース。
type Sanitizer interface {
	Sanitize(input string) string
}

// CreateInput はピン作成の入力。
type CreateInput struct {
	Title       string
	Description string
	Latitude    float64
	Longitude   float64
	Prefecture  string
	Address     string
	VisitedAt   *time.Time // nilの場合は現在時刻
}

// UpdateInput はピン更新の入力。nilのフィールドは変更しない。
type UpdateInput struct {
	Title       *string
	Description *string
	Latitude    *float64
	Longitude   *float64
	Prefecture  *string
	Address     *string
	VisitedAt   *time.Time
}

// Service はピンに関するビジネスロジックを提供する。
// 取得・更新・削除の認可はピンが属するグループのメンバーシップで判定する。
// 作成者であるかは問わない（ふたりで共有するログのため）。
type Service struct {
	pinRepo    repository.PinRepository
	memberRepo repository.MemberRepository
	sanitizer  Sanitizer
}

// NewService はServiceを生成する。
func NewService(pinRepo repository.PinRepository, memberRepo repository.MemberRepository, sanitizer Sanitizer) *Service {
	return &Service{
		pinRepo:    pinRepo,
		memberRepo: memberRepo,
		sanitizer:  sanitizer,
	}
}

// Create は指定グループにピンを作成する。
// 呼び出し元のグループメンバーシップを検証する。
func (s *Service) Create(ctx context.Context, userID, groupID string, input CreateInput) (*model.PinWithAuthor, error) {
	if groupID == "" {
		return nil, model.NewGroupIDRequiredError()
	}

	// メンバーシップの検証
	member, err := s.memberRepo.FindByUserAndGroup(ctx, userID, groupID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの検索に失敗しました: %w", err)
	}
	if member == nil {
		return nil, model.NewForbiddenError()
	}

	if err := s.validateCreate(&input); err != nil {
		return nil, err
	}

	now := time.Now()
	visitedAt := now
	if input.VisitedAt != nil {
		visitedAt = *input.VisitedAt
	}

	p := &model.Pin{
		ID:          uuid.New().String(),
		GroupID:     groupID,
		CreatedByID: userID,
		Title:       s.sanitizer.Sanitize(input.Title),
		Description: s.sanitizer.Sanitize(input.Description),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Prefecture:  s.sanitizer.Sanitize(input.Prefecture),
		Address:     s.sanitizer.Sanitize(input.Address),
		VisitedAt:   visitedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.pinRepo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("ピンの作成に失敗しました: %w", err)
	}

	slog.Info("pin created",
		slog.String("pin_id", p.ID),
		slog.String("group_id", groupID),
		slog.String("user_id", userID),
	)

	return s.pinRepo.FindByID(ctx, p.ID)
}

// ListByGroup はグループのピンを訪問日時の降順で返す。
// グループメンバーシップはミドルウェアで検証済みであること。
func (s *Service) ListByGroup(ctx context.Context, groupID string) ([]*model.PinWithAuthor, error) {
	pins, err := s.pinRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("ピン一覧の取得に失敗しました: %w", err)
	}

	return pins, nil
}

// Get は指定IDのピンを取得する。
// 404は存在しないピンIDに限り、メンバー外アクセスは403とする。
func (s *Service) Get(ctx context.Context, userID, pinID string) (*model.PinWithAuthor, error) {
	return s.authorize(ctx, userID, pinID)
}

// Update はピンの内容を更新する。nilでないフィールドのみ変更する。
// グループのメンバーであれば作成者でなくても更新できる。
func (s *Service) Update(ctx context.Context, userID, pinID string, input UpdateInput) (*model.PinWithAuthor, error) {
	existing, err := s.authorize(ctx, userID, pinID)
	if err != nil {
		return nil, err
	}

	updated := existing.Pin
	if input.Title != nil {
		updated.Title = s.sanitizer.Sanitize(*input.Title)
	}
	if input.Description != nil {
		updated.Description = s.sanitizer.Sanitize(*input.Description)
	}
	if input.Latitude != nil {
		updated.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		updated.Longitude = *input.Longitude
	}
	if input.Prefecture != nil {
		updated.Prefecture = s.sanitizer.Sanitize(*input.Prefecture)
	}
	if input.Address != nil {
		updated.Address = s.sanitizer.Sanitize(*input.Address)
	}
	if input.VisitedAt != nil {
		updated.VisitedAt = *input.VisitedAt
	}
	updated.UpdatedAt = time.Now()

	if err := s.validatePin(&updated); err != nil {
		return nil, err
	}

	if err := s.pinRepo.Update(ctx, &updated); err != nil {
		return nil, fmt.Errorf("ピンの更新に失敗しました: %w", err)
	}

	return s.pinRepo.FindByID(ctx, pinID)
}

// Delete はピンを削除する。
// グループのメンバーであれば作成者でなくても削除できる。
func (s *Service) Delete(ctx context.Context, userID, pinID string) error {
	if _, err := s.authorize(ctx, userID, pinID); err != nil {
		return err
	}

	if err := s.pinRepo.Delete(ctx, pinID); err != nil {
		return fmt.Errorf("ピンの削除に失敗しました: %w", err)
	}

	slog.Info("pin deleted",
		slog.String("pin_id", pinID),
		slog.String("user_id", userID),
	)

	return nil
}

// authorize はピンを取得し、呼び出し元がピンの属するグループの
// メンバーであることを検証する。
func (s *Service) authorize(ctx context.Context, userID, pinID string) (*model.PinWithAuthor, error) {
	p, err := s.pinRepo.FindByID(ctx, pinID)
	if err != nil {
		return nil, fmt.Errorf("ピンの取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPinNotFoundError(pinID)
	}

	member, err := s.memberRepo.FindByUserAndGroup(ctx, userID, p.GroupID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの検索に失敗しました: %w", err)
	}
	if member == nil {
		return nil, model.NewForbiddenError()
	}

	return p, nil
}

// validateCreate はピン作成入力のバリデーションを行う。
func (s *Service) validateCreate(input *CreateInput) error {
	if s.sanitizer.Sanitize(input.Title) == "" {
		return model.NewValidationError("タイトルを入力してください")
	}
	if s.sanitizer.Sanitize(input.Prefecture) == "" {
		return model.NewValidationError("都道府県を選択してください")
	}
	if input.Latitude < -90 || input.Latitude > 90 {
		return model.NewValidationError("緯度は-90から90の範囲で指定してください")
	}
	if input.Longitude < -180 || input.Longitude > 180 {
		return model.NewValidationError("経度は-180から180の範囲で指定してください")
	}
	return nil
}

// validatePin は更新後のピンのバリデーションを行う。
func (s *Service) validatePin(p *model.Pin) error {
	if p.Title == "" {
		return model.NewValidationError("タイトルを入力してください")
	}
	if p.Prefecture == "" {
		return model.NewValidationError("都道府県を選択してください")
	}
	if p.Latitude < -90 || p.Latitude > 90 {
		return model.NewValidationError("緯度は-90から90の範囲で指定してください")
	}
	if p.Longitude < -180 || p.Longitude > 180 {
		return model.NewValidationError("経度は-180から180の範囲で指定してください")
	}
	return nil
}
