package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Marstach-svg/maple/internal/model"
)

// PostgresMemberRepo はPostgreSQLを使用したグループメンバーシップリポジトリ。
type PostgresMemberRepo struct {
	db *sql.DB
}

// NewPostgresMemberRepo はPostgresMemberRepoを生成する。
func NewPostgresMemberRepo(db *sql.DB) *PostgresMemberRepo {
	return &PostgresMemberRepo{db: db}
}

// FindByUserAndGroup は(userID, groupID)の複合キーでメンバーシップを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresMemberRepo) FindByUserAndGroup(ctx context.Context, userID, groupID string) (*model.GroupMember, error) {
	member := &model.GroupMember{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, group_id, role, created_at
		 FROM group_members WHERE user_id = $1 AND group_id = $2`,
		userID, groupID,
	).Scan(&member.ID, &member.UserID, &member.GroupID, &member.Role, &member.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}

	return member, nil
}

// CountByGroupID はグループの現在のメンバー数を返す。
func (r *PostgresMemberRepo) CountByGroupID(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = $1`,
		groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return count, nil
}

// Create はメンバーシップを作成する。
// (user_id, group_id)の一意制約違反はErrDuplicateとして返す。
func (r *PostgresMemberRepo) Create(ctx context.Context, member *model.GroupMember) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO group_members (id, user_id, group_id, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		member.ID, member.UserID, member.GroupID, member.Role, member.CreatedAt,
	)
	if err != nil {
		if dup := wrapDuplicate(err); errors.Is(dup, ErrDuplicate) {
			return dup
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}

	return nil
}

// ListByGroupID はグループの全メンバーをユーザー情報付きで取得する。
func (r *PostgresMemberRepo) ListByGroupID(ctx context.Context, groupID string) ([]*model.MemberWithUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.user_id, m.group_id, m.role, m.created_at, u.email, u.name
		 FROM group_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = $1
		 ORDER BY m.created_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*model.MemberWithUser
	for rows.Next() {
		m := &model.MemberWithUser{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.GroupID, &m.Role, &m.CreatedAt, &m.UserEmail, &m.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}

	return members, nil
}

// compile-time interface check
var _ MemberRepository = (*PostgresMemberRepo)(nil)
