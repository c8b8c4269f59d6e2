package kafka

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducerMetrics_Registered(t *testing.T) {
	// Touch the producer metrics so they appear in Gather().
	ProducerMessagesPublished.WithLabelValues("test-topic")
	ProducerMessagesFailed.WithLabelValues("test-topic")

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	help := make(map[string]string, len(families))
	for _, fam := range families {
		help[fam.GetName()] = fam.GetHelp()
	}

	for _, name := range []string{
		"kafka_producer_messages_published_total",
		"kafka_producer_messages_failed_total",
	} {
		assert.NotEmpty(t, help[name], "expected metric %q to be registered with help text", name)
	}
}

// counterValue retrieves the current value of a producer counter for a topic.
func counterValue(t *testing.T, metricName, topic string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, fam := range families {
		if fam.GetName() != metricName {
			continue
		}
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "topic" && lp.GetValue() == topic && m.GetCounter() != nil {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
