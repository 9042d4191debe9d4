package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Marstach-svg/maple/internal/model"
)

// PostgresGroupRepo はPostgreSQLを使用したグループリポジトリ。
type PostgresGroupRepo struct {
	db *sql.DB
}

// NewPostgresGroupRepo はPostgresGroupRepoを生成する。
func NewPostgresGroupRepo(db *sql.DB) *PostgresGroupRepo {
	return &PostgresGroupRepo{db: db}
}

// CreateWithAdmin はグループと作成者のadminメンバーシップを
// 同一トランザクションで作成する。
// 招待コードの一意制約違反はErrDuplicateとして返す。
func (r *PostgresGroupRepo) CreateWithAdmin(ctx context.Context, group *model.Group, admin *model.GroupMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// グループを作成
	_, err = tx.ExecContext(ctx,
		`INSERT INTO couple_groups (id, name, description, invite_code, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		group.ID, group.Name, group.Description, group.InviteCode, group.CreatedAt, group.UpdatedAt,
	)
	if err != nil {
		if dup := wrapDuplicate(err); errors.Is(dup, ErrDuplicate) {
			return dup
		}
		return fmt.Errorf("failed to insert group: %w", err)
	}

	// 作成者をadminとして登録
	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (id, user_id, group_id, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		admin.ID, admin.UserID, admin.GroupID, admin.Role, admin.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert admin membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// FindByID は指定IDのグループを取得する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByID(ctx context.Context, id string) (*model.Group, error) {
	group := &model.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, invite_code, created_at, updated_at
		 FROM couple_groups WHERE id = $1`,
		id,
	).Scan(&group.ID, &group.Name, &group.Description, &group.InviteCode, &group.CreatedAt, &group.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by ID: %w", err)
	}

	return group, nil
}

// FindByInviteCode は招待コードでグループを検索する。見つからない場合はnilを返す。
func (r *PostgresGroupRepo) FindByInviteCode(ctx context.Context, code string) (*model.Group, error) {
	group := &model.Group{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, invite_code, created_at, updated_at
		 FROM couple_groups WHERE invite_code = $1`,
		code,
	).Scan(&group.ID, &group.Name, &group.Description, &group.InviteCode, &group.CreatedAt, &group.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by invite code: %w", err)
	}

	return group, nil
}

// ListByUserID はユーザーが所属する全グループをメンバー・ピン数付きで取得する。
func (r *PostgresGroupRepo) ListByUserID(ctx context.Context, userID string) ([]*model.GroupWithMembers, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, g.invite_code, g.created_at, g.updated_at,
		        (SELECT COUNT(*) FROM place_pins p WHERE p.group_id = g.id) AS pin_count
		 FROM couple_groups g
		 JOIN group_members me ON me.group_id = g.id AND me.user_id = $1
		 ORDER BY g.created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*model.GroupWithMembers
	for rows.Next() {
		g := &model.GroupWithMembers{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.InviteCode, &g.CreatedAt, &g.UpdatedAt, &g.PinCount); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	// グループごとのメンバーを取得
	for _, g := range groups {
		members, err := r.listMembers(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		g.Members = members
	}

	return groups, nil
}

// PrefectureStats はグループのピンを都道府県ごとに集計する。
func (r *PostgresGroupRepo) PrefectureStats(ctx context.Context, groupID string) ([]*model.PrefectureStat, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT prefecture, COUNT(*) AS count
		 FROM place_pins
		 WHERE group_id = $1
		 GROUP BY prefecture
		 ORDER BY count DESC, prefecture`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate prefecture stats: %w", err)
	}
	defer rows.Close()

	var stats []*model.PrefectureStat
	for rows.Next() {
		s := &model.PrefectureStat{}
		if err := rows.Scan(&s.Prefecture, &s.Count); err != nil {
			return nil, fmt.Errorf("failed to scan prefecture stat: %w", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prefecture stats: %w", err)
	}

	return stats, nil
}

// listMembers はグループのメンバーをユーザー情報付きで取得する。
func (r *PostgresGroupRepo) listMembers(ctx context.Context, groupID string) ([]*model.MemberWithUser, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT m.id, m.user_id, m.group_id, m.role, m.created_at, u.email, u.name
		 FROM group_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.group_id = $1
		 ORDER BY m.created_at`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list group members: %w", err)
	}
	defer rows.Close()

	var members []*model.MemberWithUser
	for rows.Next() {
		m := &model.MemberWithUser{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.GroupID, &m.Role, &m.CreatedAt, &m.UserEmail, &m.UserName); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate group members: %w", err)
	}

	return members, nil
}

// compile-time interface check
var _ GroupRepository = (*PostgresGroupRepo)(nil)
