// Package session は署名付きセッショントークンの発行・検証と
// HTTP Cookieへのバインディングを提供する。
//
// トークンはサーバー側に状態を持たないMAC方式で、ペイロード（ユーザーID、
// メールアドレス、有効期限）は改ざん防止のみで秘匿はされない。
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// tokenSeparator はペイロード部と署名部の区切り文字。
const tokenSeparator = "."

var (
	// ErrInvalidToken は構造不正または署名不一致のトークンを表す。
	// 部分的なペイロードを返すことは決してない。
	ErrInvalidToken = errors.New("invalid session token")

	// ErrTokenExpired はペイロード内の有効期限を過ぎたトークンを表す。
	// Cookie自体のMax-Ageとは独立にサーバー側で検証する。
	ErrTokenExpired = errors.New("session token expired")
)

// Payload はトークンに載せるクレームを表す。
type Payload struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Codec はセッショントークンのエンコード・デコードを行う。
// 署名にはHMAC-SHA256を使用する。
type Codec struct {
	secret []byte
}

// NewCodec は指定された秘密鍵でCodecを生成する。
func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode はペイロードを署名付きトークン文字列に変換する。
// 形式: base64url(JSONペイロード) + "." + hex(HMAC-SHA256(ペイロード))
func (c *Codec) Encode(payload Payload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	encoded := base64.RawURLEncoding.EncodeToString(raw)
	return encoded + tokenSeparator + c.sign(raw), nil
}

// Decode はトークン文字列を検証してペイロードを返す。
// 区切り文字の欠落、base64不正、JSON不正、署名不一致はすべてErrInvalidToken。
// 署名が正しくても有効期限切れの場合はErrTokenExpired。
func (c *Codec) Decode(token string) (*Payload, error) {
	// 1. ペイロード部と署名部に分割
	encoded, signature, found := strings.Cut(token, tokenSeparator)
	if !found || encoded == "" || signature == "" {
		return nil, ErrInvalidToken
	}

	// 2. ペイロードを復元
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidToken
	}

	// 3. 署名を再計算して定数時間比較
	if !hmac.Equal([]byte(signature), []byte(c.sign(raw))) {
		return nil, ErrInvalidToken
	}

	var payload Payload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, ErrInvalidToken
	}

	// 4. ペイロード内の有効期限を検証
	if !payload.ExpiresAt.IsZero() && time.Now().After(payload.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	return &payload, nil
}

// sign はペイロードバイト列のHMAC-SHA256署名をhex文字列で返す。
func (c *Codec) sign(raw []byte) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write(raw)
	return hex.EncodeToString(mac.Sum(nil))
}
