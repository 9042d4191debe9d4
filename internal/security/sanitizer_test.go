package security

import "testing"

// TestTextSanitizer_Sanitize はHTMLタグの除去を検証する。
func TestTextSanitizer_Sanitize(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"プレーンテキストはそのまま", "京都タワー", "京都タワー"},
		{"scriptタグを除去", `<script>alert("x")</script>素敵な場所`, "素敵な場所"},
		{"HTMLタグを除去してテキストを残す", "<b>最高</b>の夜景", "最高の夜景"},
		{"前後の空白を除去", "  札幌  ", "札幌"},
		{"imgタグのonerrorを除去", `<img src=x onerror=alert(1)>温泉`, "温泉"},
		{"空文字列", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
