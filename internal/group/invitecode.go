package group

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// inviteCodeBytes は招待コードの乱数バイト数。hex化で16文字になる。
const inviteCodeBytes = 8

// NewInviteCode は招待コードを生成する。
// 暗号学的乱数8バイトをhex化して大文字にした16文字の文字列を返す。
// 生成時の一意性チェックは行わない。衝突はinvite_code列の
// 一意制約違反としてデータ層で検出される。
func NewInviteCode() (string, error) {
	b := make([]byte, inviteCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}

	return strings.ToUpper(hex.EncodeToString(b)), nil
}
