package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_AllHealthy(t *testing.T) {
	c := NewChecker()
	c.Register("always-ok", func(context.Context) (Status, string) { return StatusHealthy, "fine" })

	report := c.Run(context.Background())
	assert.Equal(t, StatusHealthy, report["status"])
}

func TestChecker_OneUnhealthyDominates(t *testing.T) {
	c := NewChecker()
	c.Register("ok", func(context.Context) (Status, string) { return StatusHealthy, "fine" })
	c.Register("broken", func(context.Context) (Status, string) { return StatusUnhealthy, "down" })

	report := c.Run(context.Background())
	assert.Equal(t, StatusUnhealthy, report["status"])
}

func TestChecker_DegradedWithoutUnhealthyStaysDegraded(t *testing.T) {
	c := NewChecker()
	c.Register("ok", func(context.Context) (Status, string) { return StatusHealthy, "fine" })
	c.Register("degraded", func(context.Context) (Status, string) { return StatusDegraded, "meh" })

	report := c.Run(context.Background())
	assert.Equal(t, StatusDegraded, report["status"])
}

func TestMotorFaultCheck(t *testing.T) {
	var err error
	check := MotorFaultCheck(func() error { return err })

	status, _ := check(context.Background())
	assert.Equal(t, StatusHealthy, status)

	err = errors.New("stall detected")
	status, msg := check(context.Background())
	assert.Equal(t, StatusDegraded, status)
	assert.Contains(t, msg, "stall detected")
}

func TestSchedulerLivenessCheck(t *testing.T) {
	last := time.Now()
	check := SchedulerLivenessCheck(func() time.Time { return last }, 50*time.Millisecond)

	status, _ := check(context.Background())
	assert.Equal(t, StatusHealthy, status)

	last = time.Now().Add(-time.Hour)
	status, msg := check(context.Background())
	assert.Equal(t, StatusUnhealthy, status)
	assert.NotEmpty(t, msg)
}

func TestChecker_RunIncludesEveryRegisteredCheck(t *testing.T) {
	c := NewChecker()
	c.Register("a", func(context.Context) (Status, string) { return StatusHealthy, "" })
	c.Register("b", func(context.Context) (Status, string) { return StatusHealthy, "" })

	report := c.Run(context.Background())
	checks, ok := report["checks"].([]map[string]interface{})
	require.True(t, ok)
	assert.Len(t, checks, 2)
}
