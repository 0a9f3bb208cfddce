package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestDeliveryMetricsExports(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewDeliveryMetrics(reg)

	metrics.IncChannelSend("push", "success")
	metrics.IncChannelSend("email", "failure")
	metrics.IncTerminal("delivered")
	metrics.ObserveAttempt("high", 120*time.Millisecond)
	metrics.SetQueueDepth(3)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "notification_channel_sends", "channel", "push"); err != nil {
		t.Fatalf("fetch channel sends: %v", err)
	} else if got != 1 {
		t.Fatalf("expected push sends=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "notification_terminal", "status", "delivered"); err != nil {
		t.Fatalf("fetch terminal: %v", err)
	} else if got != 1 {
		t.Fatalf("expected delivered=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "notification_attempt_duration_seconds", "priority", "high"); err != nil {
		t.Fatalf("fetch attempt duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}

	if mf := findMetricFamily(mfs, "notification_queue_depth"); mf == nil {
		t.Fatal("expected queue depth gauge")
	} else if mf.GetMetric()[0].GetGauge().GetValue() != 3 {
		t.Fatalf("expected depth 3, got %f", mf.GetMetric()[0].GetGauge().GetValue())
	}
}

func TestDeliveryMetricsNilSafe(t *testing.T) {
	var metrics *DeliveryMetrics
	metrics.IncChannelSend("push", "success")
	metrics.IncTerminal("failed")
	metrics.ObserveAttempt("low", time.Second)
	metrics.SetQueueDepth(0)
}
