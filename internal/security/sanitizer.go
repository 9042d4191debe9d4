// Package security は入力コンテンツの無害化を提供する。
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はユーザー入力テキストからHTMLタグをすべて除去する。
// ピンのタイトル・説明・住所、グループ名・説明など、
// そのままUIに表示される文字列に適用する。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
// StrictPolicyを使用し、タグは一切許可しない。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize はHTMLタグを除去し、前後の空白を取り除いた文字列を返す。
func (s *TextSanitizer) Sanitize(input string) string {
	return strings.TrimSpace(s.policy.Sanitize(input))
}
