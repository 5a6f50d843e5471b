package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})

	EmailsTotal.WithLabelValues("pass", "sent").Inc()
	families, err := prometheus.DefaultGatherer.Gather()
	assert.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "eventpay_confirmation_emails_total")
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(ReconciliationsTotal.WithLabelValues("phonepe", "fulfilled"))
	ReconciliationsTotal.WithLabelValues("phonepe", "fulfilled").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ReconciliationsTotal.WithLabelValues("phonepe", "fulfilled")))
}
