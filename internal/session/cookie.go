package session

import (
	"net/http"
	"time"
)

// CookieName はセッショントークンを保持するCookieの名前。
const CookieName = "session"

// CookieConfig はセッションCookieの属性設定。
type CookieConfig struct {
	Secure bool
	Domain string
	MaxAge int // 秒。トークンの有効期限もこの値から算出する。
}

// CookieManager はCodecをHTTP Cookieにバインドする。
// SameSite=StrictかつHttpOnlyで発行し、クロスサイトからの送信と
// JavaScriptからの読み取りを防ぐ。
type CookieManager struct {
	codec  *Codec
	config CookieConfig
}

// NewCookieManager はCookieManagerを生成する。
func NewCookieManager(codec *Codec, config CookieConfig) *CookieManager {
	return &CookieManager{codec: codec, config: config}
}

// Issue はユーザーのセッショントークンを発行し、Cookieとして設定する。
func (m *CookieManager) Issue(w http.ResponseWriter, userID, email string) error {
	token, err := m.codec.Encode(Payload{
		UserID:    userID,
		Email:     email,
		ExpiresAt: time.Now().Add(time.Duration(m.config.MaxAge) * time.Second),
	})
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Domain:   m.config.Domain,
		MaxAge:   m.config.MaxAge,
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	return nil
}

// Read はリクエストのCookieからセッションペイロードを読み取る。
// Cookieが存在しない、またはトークンが無効・期限切れの場合はエラーを返す。
func (m *CookieManager) Read(r *http.Request) (*Payload, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrInvalidToken
	}

	return m.codec.Decode(cookie.Value)
}

// Clear はセッションCookieを空値・Max-Age=0で上書きする。
// ブラウザ側で即時失効させる。削除プリミティブではない。
// （Goでは負のMaxAgeが "Max-Age=0" として送出される）
func (m *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Domain:   m.config.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.config.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}
