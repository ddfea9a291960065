package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSONWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "debug", "json")
	require.Equal(t, logrus.DebugLevel, l.GetLevel())

	Component(l, "auth").WithField("role", "HR").Info("signed in")

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "auth", got["component"])
	require.Equal(t, "HR", got["role"])
	require.Equal(t, "signed in", got["msg"])
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	l := newLogger(&bytes.Buffer{}, "nonsense", "text")
	require.Equal(t, logrus.InfoLevel, l.GetLevel())
	_, ok := l.Formatter.(*logrus.TextFormatter)
	require.True(t, ok)
}

func TestNewMetricsRegistersCollectors(t *testing.T) {
	m := NewMetrics()
	m.SignIns.WithLabelValues("HR", "success").Inc()
	m.UpstreamCalls.WithLabelValues("user.all", "ok").Inc()

	families, err := m.Registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["hrportal_signins_total"])
	require.True(t, names["hrportal_hrapi_calls_total"])
}
