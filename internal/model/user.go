// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュで、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Email        string
	Name         string // 表示名（任意）
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
