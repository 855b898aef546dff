package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
app:
  name: otpguard
  debug: true
  workers: 4
jwt:
  ttl_minutes: 60
store:
  timeout_seconds: 5
mfa:
  secret: "aGVsbG8="
messaging:
  brokers: "broker-1:9092,broker-2:9092"
instrument:
  trace_sample_ratio: 0.25
database:
  max_conns: 10
`

func TestViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cfg.Close() })

	assert.Equal(t, "otpguard", cfg.GetString("app.name"))
	assert.True(t, cfg.GetBool("app.debug"))
	assert.Equal(t, 4, cfg.GetInt("app.workers"))
	assert.Equal(t, uint(4), cfg.GetUint("app.workers"))
	assert.Equal(t, int32(10), cfg.GetInt32("database.max_conns"))
	assert.InDelta(t, 0.25, cfg.GetFloat64("instrument.trace_sample_ratio"), 1e-9)
	assert.Equal(t, time.Hour, cfg.GetMinute("jwt.ttl_minutes"))
	assert.Equal(t, 5*time.Second, cfg.GetSecond("store.timeout_seconds"))
	assert.Equal(t, []byte("hello"), cfg.GetBinary("mfa.secret"))
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.GetArray("messaging.brokers"))
}

func TestViperFromBytesMissingKeys(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(testYAML))
	require.NoError(t, err)

	assert.Empty(t, cfg.GetString("nope"))
	assert.False(t, cfg.GetBool("nope"))
	assert.Zero(t, cfg.GetInt("nope"))
	assert.Empty(t, cfg.GetBinary("nope"))
}

func TestViperFromBytesRequiresType(t *testing.T) {
	_, err := NewViperFromBytes("", []byte(testYAML))
	assert.Error(t, err)
}
