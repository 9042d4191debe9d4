package session

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// TestCodec_EncodeDecode_Roundtrip は有効なペイロードがエンコード・デコードで
// 往復することを検証する。
func TestCodec_EncodeDecode_Roundtrip(t *testing.T) {
	codec := NewCodec("test-secret")

	original := Payload{
		UserID:    "user-1",
		Email:     "test@example.com",
		ExpiresAt: time.Now().Add(1 * time.Hour).Truncate(time.Second),
	}

	token, err := codec.Encode(original)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	decoded, err := codec.Decode(token)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if decoded.UserID != original.UserID {
		t.Errorf("UserID = %q, want %q", decoded.UserID, original.UserID)
	}
	if decoded.Email != original.Email {
		t.Errorf("Email = %q, want %q", decoded.Email, original.Email)
	}
	if !decoded.ExpiresAt.Equal(original.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", decoded.ExpiresAt, original.ExpiresAt)
	}
}

// TestCodec_Decode_TamperedSignature は署名部の1ビット改変で無効になることを検証する。
func TestCodec_Decode_TamperedSignature(t *testing.T) {
	codec := NewCodec("test-secret")

	token, err := codec.Encode(Payload{
		UserID:    "user-1",
		Email:     "test@example.com",
		ExpiresAt: time.Now().Add(1 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	// 署名部の各文字を順に改変し、すべて拒否されることを確認
	sepIdx := strings.Index(token, ".")
	for i := sepIdx + 1; i < len(token); i++ {
		flipped := []byte(token)
		if flipped[i] == 'a' {
			flipped[i] = 'b'
		} else {
			flipped[i] = 'a'
		}

		if _, err := codec.Decode(string(flipped)); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Decode(改変位置=%d) error = %v, want ErrInvalidToken", i, err)
		}
	}
}

// TestCodec_Decode_SwappedPayload は別ユーザーのペイロードに元の署名を
// 流用したトークンが無効になることを検証する（改ざん防止特性）。
func TestCodec_Decode_SwappedPayload(t *testing.T) {
	codec := NewCodec("test-secret")

	tokenA, err := codec.Encode(Payload{
		UserID:    "user-a",
		Email:     "a@example.com",
		ExpiresAt: time.Now().Add(1 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	tokenB, err := codec.Encode(Payload{
		UserID:    "user-b",
		Email:     "b@example.com",
		ExpiresAt: time.Now().Add(1 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	payloadB, _, _ := strings.Cut(tokenB, ".")
	_, signatureA, _ := strings.Cut(tokenA, ".")

	forged := payloadB + "." + signatureA
	if _, err := codec.Decode(forged); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode(署名流用) error = %v, want ErrInvalidToken", err)
	}
}

// TestCodec_Decode_MalformedTokens は構造不正なトークンがすべて
// panicせずErrInvalidTokenになることを検証する。
func TestCodec_Decode_MalformedTokens(t *testing.T) {
	codec := NewCodec("test-secret")

	tests := []struct {
		name  string
		token string
	}{
		{"空文字列", ""},
		{"区切り文字なし", "eyJmb28iOiJiYXIifQ"},
		{"署名部が空", "eyJmb28iOiJiYXIifQ."},
		{"ペイロード部が空", ".abcdef0123456789"},
		{"base64不正", "!!!not-base64!!!.abcdef0123456789"},
		{"JSON不正", "bm90LWpzb24." + NewCodec("test-secret").sign([]byte("not-json"))},
		{"区切り文字のみ", "."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := codec.Decode(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Decode(%q) error = %v, want ErrInvalidToken", tt.token, err)
			}
			if payload != nil {
				t.Errorf("Decode(%q) = %+v, want nil（部分的なペイロードを返さないこと）", tt.token, payload)
			}
		})
	}
}

// TestCodec_Decode_Expired はペイロード内の有効期限切れが
// ErrTokenExpiredになることを検証する。
func TestCodec_Decode_Expired(t *testing.T) {
	codec := NewCodec("test-secret")

	token, err := codec.Encode(Payload{
		UserID:    "user-1",
		Email:     "test@example.com",
		ExpiresAt: time.Now().Add(-1 * time.Minute),
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if _, err := codec.Decode(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Decode(期限切れ) error = %v, want ErrTokenExpired", err)
	}
}

// TestCodec_Decode_DifferentSecret は別の秘密鍵で署名されたトークンが
// 無効になることを検証する。
func TestCodec_Decode_DifferentSecret(t *testing.T) {
	token, err := NewCodec("secret-one").Encode(Payload{
		UserID:    "user-1",
		Email:     "test@example.com",
		ExpiresAt: time.Now().Add(1 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	if _, err := NewCodec("secret-two").Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode(別秘密鍵) error = %v, want ErrInvalidToken", err)
	}
}
