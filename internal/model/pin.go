// Package model はドメインモデルを定義する。
package model

import "time"

// Pin は訪問した場所の記録を表す。
// グループに属し、メンバーの誰でも編集・削除できる（作成者に限定しない）。
type Pin struct {
	ID          string
	GroupID     string
	CreatedByID string
	Title       string
	Description string // 任意
	Latitude    float64
	Longitude   float64
	Prefecture  string
	Address     string // 任意
	VisitedAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PinWithAuthor はピンに作成者情報を付与したビュー。
type PinWithAuthor struct {
	Pin
	AuthorEmail string
	AuthorName  string
}
