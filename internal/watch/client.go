// Package watch はAPIをポーリングしてグループの更新を検出するクライアントを提供する。
package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Client はセッションCookieを保持するAPIクライアント。
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient はAPIクライアントを生成する。
// ログインで発行されるセッションCookieはジャーで自動的に保持・送信される。
func NewClient(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
		},
	}, nil
}

// apiEnvelope はAPIレスポンスの統一フォーマット。
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

// Login はメールアドレスとパスワードでログインし、セッションCookieを得る。
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if _, err := decodeEnvelope(resp); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	return nil
}

// FetchPins はグループのピン一覧のJSON表現を取得する。
func (c *Client) FetchPins(ctx context.Context, groupID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/pins/group/"+groupID)
}

// FetchPrefectureStats はグループの都道府県別集計のJSON表現を取得する。
func (c *Client) FetchPrefectureStats(ctx context.Context, groupID string) (json.RawMessage, error) {
	return c.get(ctx, "/api/groups/"+groupID+"/prefecture-stats")
}

// get は指定パスにGETリクエストを送り、dataフィールドの生JSONを返す。
func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

// decodeEnvelope はAPIレスポンスを解析し、成功時はdataを返す。
// エラー時はサーバーのエラーコードとメッセージを含むエラーを返す。
func decodeEnvelope(resp *http.Response) (json.RawMessage, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !envelope.Success {
		return nil, fmt.Errorf("api error (status %d): [%s] %s", resp.StatusCode, envelope.Code, envelope.Error)
	}

	return envelope.Data, nil
}
