package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DeliveryMetrics records delivery queue activity.
type DeliveryMetrics struct {
	channelSends *prometheus.CounterVec
	terminal     *prometheus.CounterVec
	attempts     *prometheus.HistogramVec
	queueDepth   prometheus.Gauge
}

// NewDeliveryMetrics registers the delivery metrics on the provided registerer.
func NewDeliveryMetrics(reg prometheus.Registerer) *DeliveryMetrics {
	if reg == nil {
		return &DeliveryMetrics{}
	}
	channelSends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_channel_sends",
		Help: "Channel send attempts by channel and outcome.",
	}, []string{"channel", "outcome"})
	terminal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "notification_terminal",
		Help: "Notifications reaching a terminal delivery status.",
	}, []string{"status"})
	attempts := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "notification_attempt_duration_seconds",
		Help:    "Duration of delivery attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"priority"})
	queueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notification_queue_depth",
		Help: "Items currently held by the delivery queue.",
	})
	reg.MustRegister(channelSends, terminal, attempts, queueDepth)
	return &DeliveryMetrics{
		channelSends: channelSends,
		terminal:     terminal,
		attempts:     attempts,
		queueDepth:   queueDepth,
	}
}

// IncChannelSend counts one channel send attempt with its outcome.
func (d *DeliveryMetrics) IncChannelSend(channel, outcome string) {
	if d == nil || d.channelSends == nil {
		return
	}
	d.channelSends.WithLabelValues(normalizeLabel(channel), normalizeLabel(outcome)).Inc()
}

// IncTerminal counts a notification reaching delivered or failed.
func (d *DeliveryMetrics) IncTerminal(status string) {
	if d == nil || d.terminal == nil {
		return
	}
	d.terminal.WithLabelValues(normalizeLabel(status)).Inc()
}

// ObserveAttempt records the duration of one delivery attempt.
func (d *DeliveryMetrics) ObserveAttempt(priority string, duration time.Duration) {
	if d == nil || d.attempts == nil {
		return
	}
	d.attempts.WithLabelValues(normalizeLabel(priority)).Observe(duration.Seconds())
}

// SetQueueDepth publishes the current pending set size.
func (d *DeliveryMetrics) SetQueueDepth(depth int) {
	if d == nil || d.queueDepth == nil {
		return
	}
	d.queueDepth.Set(float64(depth))
}
