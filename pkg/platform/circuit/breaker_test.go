package circuit

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBreaker(t *testing.T) {
	t.Run("opens after consecutive failures", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(3))

		useFallback, change := b.RecordFailure()
		assert.False(t, useFallback)
		assert.False(t, change.Opened)
		b.RecordFailure()
		useFallback, change = b.RecordFailure()
		assert.True(t, useFallback)
		assert.True(t, change.Opened)
		assert.Equal(t, StateOpen, b.State())
		assert.Equal(t, "open", b.State().String())
	})

	t.Run("a success while closed resets the failure streak", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		useFallback, _ := b.RecordFailure()
		assert.False(t, useFallback)
		assert.False(t, b.IsOpen())
	})

	t.Run("open circuit refuses the primary until the cooldown passes", func(t *testing.T) {
		clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
		b := New("kafka", WithFailureThreshold(1), WithCooldown(30*time.Second), WithClock(clock.Now))

		require.True(t, b.Allow())
		b.RecordFailure()
		assert.False(t, b.Allow())

		clock.Advance(29 * time.Second)
		assert.False(t, b.Allow())
		clock.Advance(time.Second)
		assert.True(t, b.Allow(), "probe allowed at the cooldown boundary")

		// A failed probe re-arms the cooldown.
		b.RecordFailure()
		assert.False(t, b.Allow())
	})

	t.Run("successful probes close the circuit", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2), WithCooldown(0))
		b.RecordFailure()

		usePrimary, change := b.RecordSuccess()
		assert.False(t, usePrimary)
		assert.False(t, change.Closed)

		usePrimary, change = b.RecordSuccess()
		assert.True(t, usePrimary)
		assert.True(t, change.Closed)
		assert.False(t, b.IsOpen())
	})

	t.Run("a failed probe resets the success streak", func(t *testing.T) {
		b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2), WithCooldown(0))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		_, change := b.RecordSuccess()
		assert.False(t, change.Closed)
		assert.True(t, b.IsOpen())
	})

	t.Run("state gauge follows transitions", func(t *testing.T) {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_circuit_open"})
		b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(1), WithCooldown(0), WithStateGauge(gauge))
		assert.Equal(t, 0.0, testutil.ToFloat64(gauge))

		b.RecordFailure()
		assert.Equal(t, 1.0, testutil.ToFloat64(gauge))

		b.RecordSuccess()
		assert.Equal(t, 0.0, testutil.ToFloat64(gauge))

		b.RecordFailure()
		b.Reset()
		assert.Equal(t, 0.0, testutil.ToFloat64(gauge))
	})
}
