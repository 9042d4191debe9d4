// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// ハンドラーやミドルウェアから利用する。
type Recorder interface {
	RecordHTTPStatus(statusCode int)
	RecordRegistration()
	RecordLogin()
	RecordGroupCreated()
	RecordGroupJoined()
	RecordPinCreated()
	RecordWatchUpdate()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus    *prometheus.CounterVec
	registrations prometheus.Counter
	logins        prometheus.Counter
	groupsCreated prometheus.Counter
	groupJoins    prometheus.Counter
	pinsCreated   prometheus.Counter
	watchUpdates  prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "maple_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maple_registrations_total",
			Help: "ユーザー登録成功の合計数",
		}),
		logins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maple_logins_total",
			Help: "ログイン成功の合計数",
		}),
		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maple_groups_created_total",
			Help: "グループ作成の合計数",
		}),
		groupJoins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maple_group_joins_total",
			Help: "グループ参加の合計数",
		}),
		pinsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maple_pins_created_total",
			Help: "ピン作成の合計数",
		}),
		watchUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "maple_watch_updates_total",
			Help: "ポーリングで検出した更新の合計数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.registrations,
		c.logins,
		c.groupsCreated,
		c.groupJoins,
		c.pinsCreated,
		c.watchUpdates,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRegistration はユーザー登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordLogin はログイン成功を記録する。
func (c *Collector) RecordLogin() {
	c.logins.Inc()
}

// RecordGroupCreated はグループ作成を記録する。
func (c *Collector) RecordGroupCreated() {
	c.groupsCreated.Inc()
}

// RecordGroupJoined はグループ参加を記録する。
func (c *Collector) RecordGroupJoined() {
	c.groupJoins.Inc()
}

// RecordPinCreated はピン作成を記録する。
func (c *Collector) RecordPinCreated() {
	c.pinsCreated.Inc()
}

// RecordWatchUpdate はポーリングで検出した更新を記録する。
func (c *Collector) RecordWatchUpdate() {
	c.watchUpdates.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
