package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateCronSchedule(t *testing.T) {
	valid := []string{
		"*/5 * * * *",
		"0 */6 * * *",
		"30 5 * * 1-5",
		"0 0 1 * *",
		"15,45 * * * *",
	}
	for _, schedule := range valid {
		t.Run("valid "+schedule, func(t *testing.T) {
			assert.NoError(t, ValidateCronSchedule(schedule))
		})
	}

	invalid := []string{
		"",
		"not a schedule",
		"* * * *",       // フィールド不足
		"* * * * * * *", // フィールド過多
		"61 * * * *",
	}
	for _, schedule := range invalid {
		t.Run("invalid "+schedule, func(t *testing.T) {
			assert.Error(t, ValidateCronSchedule(schedule))
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	for _, tz := range []string{"UTC", "Asia/Tokyo", "America/New_York", "Europe/London"} {
		t.Run(tz, func(t *testing.T) {
			assert.NoError(t, ValidateTimezone(tz))
		})
	}

	for _, tz := range []string{"", "Mars/Olympus_Mons", "JST", "+09:00"} {
		t.Run("invalid "+tz, func(t *testing.T) {
			assert.Error(t, ValidateTimezone(tz))
		})
	}
}

func TestValidateDuration(t *testing.T) {
	min, max := time.Minute, 24*time.Hour

	t.Run("within range", func(t *testing.T) {
		assert.NoError(t, ValidateDuration(10*time.Minute, min, max))
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		assert.NoError(t, ValidateDuration(min, min, max))
		assert.NoError(t, ValidateDuration(max, min, max))
	})

	t.Run("below minimum", func(t *testing.T) {
		err := ValidateDuration(30*time.Second, min, max)
		assert.ErrorContains(t, err, "below minimum")
	})

	t.Run("exceeds maximum", func(t *testing.T) {
		err := ValidateDuration(25*time.Hour, min, max)
		assert.ErrorContains(t, err, "exceeds maximum")
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		err := ValidateDuration(time.Minute, max, min)
		assert.ErrorContains(t, err, "invalid range")
	})
}

func TestValidateIntRange(t *testing.T) {
	t.Run("within range", func(t *testing.T) {
		assert.NoError(t, ValidateIntRange(100, 1, 1000))
	})

	t.Run("boundaries are inclusive", func(t *testing.T) {
		assert.NoError(t, ValidateIntRange(1, 1, 1000))
		assert.NoError(t, ValidateIntRange(1000, 1, 1000))
	})

	t.Run("below minimum", func(t *testing.T) {
		assert.ErrorContains(t, ValidateIntRange(0, 1, 1000), "below minimum")
	})

	t.Run("exceeds maximum", func(t *testing.T) {
		assert.ErrorContains(t, ValidateIntRange(1001, 1, 1000), "exceeds maximum")
	})

	t.Run("inverted range is rejected", func(t *testing.T) {
		assert.ErrorContains(t, ValidateIntRange(5, 10, 1), "invalid range")
	})
}

func TestValidatePositiveDuration(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Nanosecond))
	assert.NoError(t, ValidatePositiveDuration(2*time.Minute))

	assert.ErrorContains(t, ValidatePositiveDuration(0), "must be positive")
	assert.ErrorContains(t, ValidatePositiveDuration(-time.Second), "must be positive")
}
