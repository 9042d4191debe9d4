package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Marstach-svg/maple/internal/model"
)

// PostgresPinRepo はPostgreSQLを使用したピンリポジトリ。
type PostgresPinRepo struct {
	db *sql.DB
}

// NewPostgresPinRepo はPostgresPinRepoを生成する。
func NewPostgresPinRepo(db *sql.DB) *PostgresPinRepo {
	return &PostgresPinRepo{db: db}
}

// Create はピンを作成する。
func (r *PostgresPinRepo) Create(ctx context.Context, pin *model.Pin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO place_pins
		 (id, group_id, created_by_id, title, description, latitude, longitude,
		  prefecture, address, visited_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pin.ID, pin.GroupID, pin.CreatedByID, pin.Title, pin.Description,
		pin.Latitude, pin.Longitude, pin.Prefecture, pin.Address,
		pin.VisitedAt, pin.CreatedAt, pin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert pin: %w", err)
	}

	return nil
}

// FindByID は指定IDのピンを作成者情報付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPinRepo) FindByID(ctx context.Context, id string) (*model.PinWithAuthor, error) {
	pin := &model.PinWithAuthor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.group_id, p.created_by_id, p.title, p.description,
		        p.latitude, p.longitude, p.prefecture, p.address,
		        p.visited_at, p.created_at, p.updated_at, u.email, u.name
		 FROM place_pins p
		 JOIN users u ON u.id = p.created_by_id
		 WHERE p.id = $1`,
		id,
	).Scan(&pin.ID, &pin.GroupID, &pin.CreatedByID, &pin.Title, &pin.Description,
		&pin.Latitude, &pin.Longitude, &pin.Prefecture, &pin.Address,
		&pin.VisitedAt, &pin.CreatedAt, &pin.UpdatedAt, &pin.AuthorEmail, &pin.AuthorName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find pin by ID: %w", err)
	}

	return pin, nil
}

// ListByGroupID はグループのピンを訪問日時の降順で取得する。
func (r *PostgresPinRepo) ListByGroupID(ctx context.Context, groupID string) ([]*model.PinWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.group_id, p.created_by_id, p.title, p.description,
		        p.latitude, p.longitude, p.prefecture, p.address,
		        p.visited_at, p.created_at, p.updated_at, u.email, u.name
		 FROM place_pins p
		 JOIN users u ON u.id = p.created_by_id
		 WHERE p.group_id = $1
		 ORDER BY p.visited_at DESC`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pins: %w", err)
	}
	defer rows.Close()

	var pins []*model.PinWithAuthor
	for rows.Next() {
		pin := &model.PinWithAuthor{}
		if err := rows.Scan(&pin.ID, &pin.GroupID, &pin.CreatedByID, &pin.Title, &pin.Description,
			&pin.Latitude, &pin.Longitude, &pin.Prefecture, &pin.Address,
			&pin.VisitedAt, &pin.CreatedAt, &pin.UpdatedAt, &pin.AuthorEmail, &pin.AuthorName); err != nil {
			return nil, fmt.Errorf("failed to scan pin: %w", err)
		}
		pins = append(pins, pin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pins: %w", err)
	}

	return pins, nil
}

// Update はピンの内容を更新する。
func (r *PostgresPinRepo) Update(ctx context.Context, pin *model.Pin) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE place_pins
		 SET title = $2, description = $3, latitude = $4, longitude = $5,
		     prefecture = $6, address = $7, visited_at = $8, updated_at = $9
		 WHERE id = $1`,
		pin.ID, pin.Title, pin.Description, pin.Latitude, pin.Longitude,
		pin.Prefecture, pin.Address, pin.VisitedAt, pin.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pin not found: %s", pin.ID)
	}

	return nil
}

// Delete は指定IDのピンを削除する。
func (r *PostgresPinRepo) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM place_pins WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete pin: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pin not found: %s", id)
	}

	return nil
}

// compile-time interface check
var _ PinRepository = (*PostgresPinRepo)(nil)
