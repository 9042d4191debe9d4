// Package model はドメインモデルを定義する。
package model

import "time"

// Group はふたりで旅の記録を共有するグループを表す。
// InviteCodeは招待用のランダム文字列で、全グループで一意。
type Group struct {
	ID          string
	Name        string
	Description string // 任意
	InviteCode  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MemberRole はグループ内での役割を表す。
type MemberRole string

const (
	// RoleAdmin はグループ作成者に自動付与される役割。
	RoleAdmin MemberRole = "admin"
	// RoleMember は招待コードで参加したユーザーの役割。
	RoleMember MemberRole = "member"
)

// GroupMember はユーザーとグループの所属関係を表す。
// (UserID, GroupID) の組は一意制約で保証される。
type GroupMember struct {
	ID        string
	UserID    string
	GroupID   string
	Role      MemberRole
	CreatedAt time.Time
}

// MemberWithUser は所属関係にユーザー情報を付与したビュー。
type MemberWithUser struct {
	GroupMember
	UserEmail string
	UserName  string
}

// GroupWithMembers はグループとメンバー一覧をまとめたビュー。
// PinCountはグループ一覧表示用のピン数（取得時のみ設定）。
type GroupWithMembers struct {
	Group
	Members  []*MemberWithUser
	PinCount int
}

// PrefectureStat は都道府県ごとのピン数を表す。
type PrefectureStat struct {
	Prefecture string
	Count      int
}

// GroupCapacity はグループの最大メンバー数。
const GroupCapacity = 2
