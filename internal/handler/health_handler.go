package handler

import (
	"encoding/json"
	"net/http"
	"time"
)

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Health はヘルスチェックエンドポイント。認証不要。
// GET /api/health
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}
