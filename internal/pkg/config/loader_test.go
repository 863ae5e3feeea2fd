package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

/* ──── LoadEnvString ──── */

func TestLoadEnvString(t *testing.T) {
	t.Run("set value wins", func(t *testing.T) {
		t.Setenv("WORKER_TIMEZONE", "Asia/Tokyo")
		assert.Equal(t, "Asia/Tokyo", LoadEnvString("WORKER_TIMEZONE", "UTC"))
	})

	t.Run("unset falls back to default", func(t *testing.T) {
		assert.Equal(t, "UTC", LoadEnvString("WORKER_TIMEZONE", "UTC"))
	})

	t.Run("empty string falls back to default", func(t *testing.T) {
		t.Setenv("WORKER_TIMEZONE", "")
		assert.Equal(t, "UTC", LoadEnvString("WORKER_TIMEZONE", "UTC"))
	})
}

/* ──── LoadEnvWithFallback ──── */

func TestLoadEnvWithFallback(t *testing.T) {
	t.Run("valid value passes the validator", func(t *testing.T) {
		t.Setenv("SWEEP_CRON_SCHEDULE", "0 */6 * * *")

		result := LoadEnvWithFallback("SWEEP_CRON_SCHEDULE", "*/5 * * * *", ValidateCronSchedule)

		assert.Equal(t, "0 */6 * * *", result.Value.(string))
		assert.False(t, result.FallbackApplied)
		assert.Empty(t, result.Warnings)
	})

	t.Run("unset uses default without warning", func(t *testing.T) {
		result := LoadEnvWithFallback("SWEEP_CRON_SCHEDULE", "*/5 * * * *", ValidateCronSchedule)

		assert.Equal(t, "*/5 * * * *", result.Value.(string))
		assert.False(t, result.FallbackApplied)
	})

	t.Run("invalid value falls back with warning", func(t *testing.T) {
		t.Setenv("SWEEP_CRON_SCHEDULE", "not a schedule")

		result := LoadEnvWithFallback("SWEEP_CRON_SCHEDULE", "*/5 * * * *", ValidateCronSchedule)

		assert.Equal(t, "*/5 * * * *", result.Value.(string))
		assert.True(t, result.FallbackApplied)
		assert.Len(t, result.Warnings, 1)
		assert.Contains(t, result.Warnings[0], "SWEEP_CRON_SCHEDULE")
	})

	t.Run("nil validator accepts anything", func(t *testing.T) {
		t.Setenv("SWEEP_CRON_SCHEDULE", "whatever")

		result := LoadEnvWithFallback("SWEEP_CRON_SCHEDULE", "*/5 * * * *", nil)

		assert.Equal(t, "whatever", result.Value.(string))
		assert.False(t, result.FallbackApplied)
	})
}

/* ──── LoadEnvDuration ──── */

func TestLoadEnvDuration(t *testing.T) {
	validator := func(d time.Duration) error {
		return ValidateDuration(d, time.Minute, 24*time.Hour)
	}

	t.Run("valid duration", func(t *testing.T) {
		t.Setenv("PENDING_CUTOFF", "30m")

		result := LoadEnvDuration("PENDING_CUTOFF", 10*time.Minute, validator)

		assert.Equal(t, 30*time.Minute, result.Value.(time.Duration))
		assert.False(t, result.FallbackApplied)
	})

	t.Run("unset uses default", func(t *testing.T) {
		result := LoadEnvDuration("PENDING_CUTOFF", 10*time.Minute, validator)

		assert.Equal(t, 10*time.Minute, result.Value.(time.Duration))
		assert.False(t, result.FallbackApplied)
	})

	t.Run("compound duration parses", func(t *testing.T) {
		t.Setenv("PENDING_CUTOFF", "1h30m")

		result := LoadEnvDuration("PENDING_CUTOFF", 10*time.Minute, validator)

		assert.Equal(t, 90*time.Minute, result.Value.(time.Duration))
	})

	t.Run("unparseable value falls back with warning", func(t *testing.T) {
		t.Setenv("PENDING_CUTOFF", "ten minutes")

		result := LoadEnvDuration("PENDING_CUTOFF", 10*time.Minute, validator)

		assert.Equal(t, 10*time.Minute, result.Value.(time.Duration))
		assert.True(t, result.FallbackApplied)
		assert.Len(t, result.Warnings, 1)
	})

	t.Run("out-of-range value falls back with warning", func(t *testing.T) {
		t.Setenv("PENDING_CUTOFF", "5s")

		result := LoadEnvDuration("PENDING_CUTOFF", 10*time.Minute, validator)

		assert.Equal(t, 10*time.Minute, result.Value.(time.Duration))
		assert.True(t, result.FallbackApplied)
	})
}

/* ──── LoadEnvInt ──── */

func TestLoadEnvInt(t *testing.T) {
	validator := func(v int) error {
		return ValidateIntRange(v, 1, 1000)
	}

	t.Run("valid integer", func(t *testing.T) {
		t.Setenv("SWEEP_BATCH_SIZE", "250")

		result := LoadEnvInt("SWEEP_BATCH_SIZE", 100, validator)

		assert.Equal(t, 250, result.Value.(int))
		assert.False(t, result.FallbackApplied)
	})

	t.Run("unset uses default", func(t *testing.T) {
		result := LoadEnvInt("SWEEP_BATCH_SIZE", 100, validator)

		assert.Equal(t, 100, result.Value.(int))
		assert.False(t, result.FallbackApplied)
	})

	t.Run("non-numeric value falls back with warning", func(t *testing.T) {
		t.Setenv("SWEEP_BATCH_SIZE", "many")

		result := LoadEnvInt("SWEEP_BATCH_SIZE", 100, validator)

		assert.Equal(t, 100, result.Value.(int))
		assert.True(t, result.FallbackApplied)
		assert.Contains(t, result.Warnings[0], "SWEEP_BATCH_SIZE")
	})

	t.Run("decimal truncates at the point", func(t *testing.T) {
		// fmt.Sscanf は小数点で読み取りを止める
		t.Setenv("SWEEP_BATCH_SIZE", "25.5")

		result := LoadEnvInt("SWEEP_BATCH_SIZE", 100, validator)

		assert.Equal(t, 25, result.Value.(int))
		assert.False(t, result.FallbackApplied)
	})

	t.Run("out-of-range value falls back", func(t *testing.T) {
		t.Setenv("SWEEP_BATCH_SIZE", "5000")

		result := LoadEnvInt("SWEEP_BATCH_SIZE", 100, validator)

		assert.Equal(t, 100, result.Value.(int))
		assert.True(t, result.FallbackApplied)
	})
}

/* ──── LoadEnvBool ──── */

func TestLoadEnvBool(t *testing.T) {
	tests := []struct {
		raw      string
		want     bool
		fallback bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"false", false, false},
		{"F", false, false},
		{"0", false, false},
		{"yes", false, true}, // 不正値はデフォルトへフォールバック
		{"oui", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("TELEGRAM_DISABLED", tt.raw)

			result := LoadEnvBool("TELEGRAM_DISABLED", false)

			assert.Equal(t, tt.want, result.Value.(bool))
			assert.Equal(t, tt.fallback, result.FallbackApplied)
		})
	}

	t.Run("unset uses default", func(t *testing.T) {
		result := LoadEnvBool("TELEGRAM_DISABLED", true)

		assert.True(t, result.Value.(bool))
		assert.False(t, result.FallbackApplied)
	})
}
