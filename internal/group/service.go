// Package group はグループ作成・参加・集計のドメインロジックを提供する。
package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Marstach-svg/maple/internal/model"
	"github.com/Marstach-svg/maple/internal/repository"
)

// Sanitizer はグループ名・説明の無害化インターフェース。
type Sanitizer interface {
	Sanitize(input string) string
}

// Service はグループに関するビジネスロジックを提供する。
type Service struct {
	groupRepo  repository.GroupRepository
	memberRepo repository.MemberRepository
	sanitizer  Sanitizer
}

// NewService はServiceを生成する。
func NewService(groupRepo repository.GroupRepository, memberRepo repository.MemberRepository, sanitizer Sanitizer) *Service {
	return &Service{
		groupRepo:  groupRepo,
		memberRepo: memberRepo,
		sanitizer:  sanitizer,
	}
}

// Create はグループを作成し、作成者をadminとして登録する。
// グループと作成者メンバーシップは同一トランザクションで作成される。
func (s *Service) Create(ctx context.Context, userID, name, description string) (*model.GroupWithMembers, error) {
	name = s.sanitizer.Sanitize(name)
	if name == "" {
		return nil, model.NewValidationError("グループ名を入力してください")
	}

	code, err := NewInviteCode()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	g := &model.Group{
		ID:          uuid.New().String(),
		Name:        name,
		Description: s.sanitizer.Sanitize(description),
		InviteCode:  code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	admin := &model.GroupMember{
		ID:        uuid.New().String(),
		UserID:    userID,
		GroupID:   g.ID,
		Role:      model.RoleAdmin,
		CreatedAt: now,
	}

	if err := s.groupRepo.CreateWithAdmin(ctx, g, admin); err != nil {
		// 招待コードの衝突。16文字hexでは実質発生しないが、
		// 発生した場合も黙って上書きせず競合として表面化させる。
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewConflictError("招待コードが重複しました")
		}
		return nil, fmt.Errorf("グループの作成に失敗しました: %w", err)
	}

	slog.Info("group created",
		slog.String("group_id", g.ID),
		slog.String("user_id", userID),
	)

	return s.withMembers(ctx, g, 0)
}

// Join は招待コードでグループに参加する。
// ガード条件は順に評価する:
// (a) 招待コードが既存グループを指す
// (b) 現在のメンバー数が定員未満
// (c) 参加者が既存メンバーでない
// すべて通過した場合のみmemberロールで参加する。
func (s *Service) Join(ctx context.Context, userID, inviteCode string) (*model.GroupWithMembers, error) {
	// (a) 招待コードの解決
	g, err := s.groupRepo.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, fmt.Errorf("グループの検索に失敗しました: %w", err)
	}
	if g == nil {
		return nil, model.NewInvalidInviteCodeError()
	}

	// (b) 定員チェック
	count, err := s.memberRepo.CountByGroupID(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバー数の取得に失敗しました: %w", err)
	}
	if count >= model.GroupCapacity {
		return nil, model.NewGroupFullError()
	}

	// (c) 重複参加チェック
	existing, err := s.memberRepo.FindByUserAndGroup(ctx, userID, g.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバーシップの検索に失敗しました: %w", err)
	}
	if existing != nil {
		return nil, model.NewAlreadyMemberError()
	}

	member := &model.GroupMember{
		ID:        uuid.New().String(),
		UserID:    userID,
		GroupID:   g.ID,
		Role:      model.RoleMember,
		CreatedAt: time.Now(),
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		// チェックとinsertの間に同一ユーザーが参加した場合、
		// (user_id, group_id)の一意制約で検出される
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewAlreadyMemberError()
		}
		return nil, fmt.Errorf("メンバーシップの作成に失敗しました: %w", err)
	}

	slog.Info("user joined group",
		slog.String("group_id", g.ID),
		slog.String("user_id", userID),
	)

	return s.withMembers(ctx, g, 0)
}

// ListForUser はユーザーが所属する全グループをメンバー・ピン数付きで返す。
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*model.GroupWithMembers, error) {
	groups, err := s.groupRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("グループ一覧の取得に失敗しました: %w", err)
	}

	return groups, nil
}

// PrefectureStats はグループのピンを都道府県ごとに集計して返す。
func (s *Service) PrefectureStats(ctx context.Context, groupID string) ([]*model.PrefectureStat, error) {
	stats, err := s.groupRepo.PrefectureStats(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("都道府県別集計に失敗しました: %w", err)
	}

	return stats, nil
}

// withMembers はグループにメンバー一覧を付与して返す。
func (s *Service) withMembers(ctx context.Context, g *model.Group, pinCount int) (*model.GroupWithMembers, error) {
	members, err := s.memberRepo.ListByGroupID(ctx, g.ID)
	if err != nil {
		return nil, fmt.Errorf("メンバー一覧の取得に失敗しました: %w", err)
	}

	return &model.GroupWithMembers{
		Group:    *g,
		Members:  members,
		PinCount: pinCount,
	}, nil
}
