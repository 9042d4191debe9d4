package watch

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// UpdateRecorder はポーリングで検出した更新の記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type UpdateRecorder interface {
	RecordWatchUpdate()
}

// WatcherConfig はWatcherの動作設定。
type WatcherConfig struct {
	GroupID  string
	Interval time.Duration // ポーリング間隔。デフォルト10秒
	Timeout  time.Duration // 1サイクルあたりのタイムアウト。デフォルトはInterval
}

// Watcher はグループのピンと集計を定期的にポーリングし、
// 内容が変化したときだけコールバックを呼ぶ。
// 変化検出はレスポンスJSONのSHA-256ハッシュ比較で行う。
type Watcher struct {
	client  *Client
	config  WatcherConfig
	metrics UpdateRecorder

	// OnPins はピン一覧の変化時に呼ばれる。nil可。
	OnPins func(data json.RawMessage)
	// OnStats は都道府県別集計の変化時に呼ばれる。nil可。
	OnStats func(data json.RawMessage)

	paused  atomic.Bool
	forceCh chan struct{}

	mu            sync.Mutex
	lastPinsHash  [sha256.Size]byte
	lastStatsHash [sha256.Size]byte
	hasPins       bool
	hasStats      bool
}

// NewWatcher はWatcherを生成する。metricsはnil可。
func NewWatcher(client *Client, config WatcherConfig, metrics UpdateRecorder) *Watcher {
	if config.Interval <= 0 {
		config.Interval = 10 * time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = config.Interval
	}

	return &Watcher{
		client:  client,
		config:  config,
		metrics: metrics,
		forceCh: make(chan struct{}, 1),
	}
}

// Run はポーリングループを開始する。コンテキストのキャンセルで終了する。
// 開始直後に1回ポーリングし、以降はInterval間隔で繰り返す。
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if w.paused.Load() {
				continue
			}
			w.poll(ctx)
		case <-w.forceCh:
			w.poll(ctx)
		}
	}
}

// ForceRefresh は次のInterval到来を待たずに即時ポーリングを要求する。
// Pause中でも実行される。
func (w *Watcher) ForceRefresh() {
	select {
	case w.forceCh <- struct{}{}:
	default:
		// ポーリング要求が既にキューにある
	}
}

// Pause は定期ポーリングを一時停止する。
func (w *Watcher) Pause() {
	w.paused.Store(true)
}

// Resume は定期ポーリングを再開する。
func (w *Watcher) Resume() {
	w.paused.Store(false)
}

// poll はピンと集計を並行に取得し、変化があればコールバックを呼ぶ。
func (w *Watcher) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, w.config.Timeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		pins     json.RawMessage
		stats    json.RawMessage
		pinsErr  error
		statsErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		pins, pinsErr = w.client.FetchPins(ctx, w.config.GroupID)
	}()
	go func() {
		defer wg.Done()
		stats, statsErr = w.client.FetchPrefectureStats(ctx, w.config.GroupID)
	}()
	wg.Wait()

	if pinsErr != nil {
		slog.Warn("failed to fetch pins",
			slog.String("group_id", w.config.GroupID),
			slog.String("error", pinsErr.Error()),
		)
	} else {
		w.handlePins(pins)
	}

	if statsErr != nil {
		slog.Warn("failed to fetch prefecture stats",
			slog.String("group_id", w.config.GroupID),
			slog.String("error", statsErr.Error()),
		)
	} else {
		w.handleStats(stats)
	}
}

// handlePins はピン一覧のハッシュを比較し、変化時にコールバックを呼ぶ。
func (w *Watcher) handlePins(data json.RawMessage) {
	hash := sha256.Sum256(data)

	w.mu.Lock()
	changed := !w.hasPins || hash != w.lastPinsHash
	w.lastPinsHash = hash
	w.hasPins = true
	w.mu.Unlock()

	if !changed {
		return
	}

	if w.metrics != nil {
		w.metrics.RecordWatchUpdate()
	}
	slog.Info("pins updated", slog.String("group_id", w.config.GroupID))

	if w.OnPins != nil {
		w.OnPins(data)
	}
}

// handleStats は集計のハッシュを比較し、変化時にコールバックを呼ぶ。
func (w *Watcher) handleStats(data json.RawMessage) {
	hash := sha256.Sum256(data)

	w.mu.Lock()
	changed := !w.hasStats || hash != w.lastStatsHash
	w.lastStatsHash = hash
	w.hasStats = true
	w.mu.Unlock()

	if !changed {
		return
	}

	if w.metrics != nil {
		w.metrics.RecordWatchUpdate()
	}
	slog.Info("prefecture stats updated", slog.String("group_id", w.config.GroupID))

	if w.OnStats != nil {
		w.OnStats(data)
	}
}
