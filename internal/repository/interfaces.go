// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/Marstach-svg/maple/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create はユーザーを作成する。
	// メールアドレスの一意制約違反はErrDuplicateとして返す。
	Create(ctx context.Context, user *model.User) error
}

// GroupRepository はグループデータの永続化インターフェース。
type GroupRepository interface {
	// CreateWithAdmin はグループと作成者のadminメンバーシップを
	// 同一トランザクションで作成する。
	// 招待コードの一意制約違反はErrDuplicateとして返す。
	CreateWithAdmin(ctx context.Context, group *model.Group, admin *model.GroupMember) error

	// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Group, error)

	// FindByInviteCode は招待コードでグループを検索する。見つからない場合はnilを返す。
	FindByInviteCode(ctx context.Context, code string) (*model.Group, error)

	// ListByUserID はユーザーが所属する全グループをメンバー・ピン数付きで取得する。
	ListByUserID(ctx context.Context, userID string) ([]*model.GroupWithMembers, error)

	// PrefectureStats はグループのピンを都道府県ごとに集計する。
	PrefectureStats(ctx context.Context, groupID string) ([]*model.PrefectureStat, error)
}

// MemberRepository はグループメンバーシップの永続化インターフェース。
type MemberRepository interface {
	// FindByUserAndGroup は(userID, groupID)の複合キーでメンバーシップを検索する。
	// 見つからない場合はnilを返す。
	FindByUserAndGroup(ctx context.Context, userID, groupID string) (*model.GroupMember, error)

	// CountByGroupID はグループの現在のメンバー数を返す。
	CountByGroupID(ctx context.Context, groupID string) (int, error)

	// Create はメンバーシップを作成する。
	// (user_id, group_id)の一意制約違反はErrDuplicateとして返す。
	Create(ctx context.Context, member *model.GroupMember) error

	// ListByGroupID はグループの全メンバーをユーザー情報付きで取得する。
	ListByGroupID(ctx context.Context, groupID string) ([]*model.MemberWithUser, error)
}

// PinRepository はピンデータの永続化インターフェース。
type PinRepository interface {
	// Create はピンを作成する。
	Create(ctx context.Context, pin *model.Pin) error

	// FindByID は指定IDのピンを作成者情報付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.PinWithAuthor, error)

	// ListByGroupID はグループのピンを訪問日時の降順で取得する。
	ListByGroupID(ctx context.Context, groupID string) ([]*model.PinWithAuthor, error)

	// Update はピンの内容を更新する。
	Update(ctx context.Context, pin *model.Pin) error

	// Delete は指定IDのピンを削除する。
	Delete(ctx context.Context, id string) error
}
