// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, group, pin, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeEmailNotAllowed    = "EMAIL_NOT_ALLOWED"
	ErrCodeEmailTaken         = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound       = "USER_NOT_FOUND"
	ErrCodeInvalidInviteCode  = "INVALID_INVITE_CODE"
	ErrCodeGroupFull          = "GROUP_FULL"
	ErrCodeAlreadyMember      = "ALREADY_MEMBER"
	ErrCodeGroupIDRequired    = "GROUP_ID_REQUIRED"
	ErrCodeGroupNotFound      = "GROUP_NOT_FOUND"
	ErrCodePinNotFound        = "PIN_NOT_FOUND"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeConflict           = "CONFLICT"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限なしエラーを生成する。
// 認証済みだが対象リソースへのアクセスが許可されていない場合に使う。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "このリソースにアクセスする権限がありません。",
		Category: "auth",
		Action:   "グループのメンバーであることを確認してください。",
	}
}

// NewEmailNotAllowedError は許可リスト外メールアドレスのエラーを生成する。
func NewEmailNotAllowedError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailNotAllowed,
		Message:  "このメールアドレスでの登録・ログインは許可されていません。",
		Category: "auth",
		Action:   "許可されたメールアドレスを使用してください。",
	}
}

// NewEmailTakenError は登録済みメールアドレスのエラーを生成する。
func NewEmailTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailTaken,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewInvalidCredentialsError は認証情報不一致エラーを生成する。
// メールアドレスの存在有無を漏らさないよう、メッセージは共通にする。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "メールアドレスまたはパスワードが正しくありません。",
		Category: "auth",
		Action:   "入力内容を確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewInvalidInviteCodeError は無効な招待コードのエラーを生成する。
func NewInvalidInviteCodeError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInviteCode,
		Message:  "無効な招待コードです。",
		Category: "group",
		Action:   "招待コードを確認してください。",
	}
}

// NewGroupFullError はグループ満員エラーを生成する。
func NewGroupFullError() *APIError {
	return &APIError{
		Code:     ErrCodeGroupFull,
		Message:  "このグループは既に満員です。",
		Category: "group",
		Action:   "新しいグループを作成してください。",
	}
}

// NewAlreadyMemberError は重複参加エラーを生成する。
func NewAlreadyMemberError() *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyMember,
		Message:  "既にこのグループのメンバーです。",
		Category: "group",
		Action:   "グループ一覧から該当グループを確認してください。",
	}
}

// NewGroupIDRequiredError はグループID未指定エラーを生成する。
func NewGroupIDRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeGroupIDRequired,
		Message:  "グループIDが必要です。",
		Category: "validation",
		Action:   "X-Group-Idヘッダーまたはパスでグループを指定してください。",
	}
}

// NewPinNotFoundError はピンが見つからない場合のエラーを生成する。
func NewPinNotFoundError(pinID string) *APIError {
	return &APIError{
		Code:     ErrCodePinNotFound,
		Message:  fmt.Sprintf("ピンが見つかりません: %s", pinID),
		Category: "pin",
		Action:   "ピンIDを確認してください。",
	}
}

// NewValidationError はバリデーション失敗エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewConflictError はデータ層の一意制約違反を表すエラーを生成する。
// 招待コードの衝突など、確率的に極めて稀な競合で発生する。
func NewConflictError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeConflict,
		Message:  fmt.Sprintf("データの競合が発生しました: %s", reason),
		Category: "system",
		Action:   "もう一度お試しください。",
	}
}
