package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tilldesk/go-offline-sync/models"
)

func TestThrottledNotifier_FirstEventWins(t *testing.T) {
	sink := &spySink{}
	throttled := NewThrottledNotifier(sink, 5*time.Second)

	now := time.Now()
	throttled.now = func() time.Time { return now }

	throttled.Notify(models.Notification{Title: "first", Severity: models.SeverityInfo})
	throttled.Notify(models.Notification{Title: "second", Severity: models.SeverityInfo})
	throttled.Notify(models.Notification{Title: "third", Severity: models.SeverityInfo})

	assert.Equal(t, []string{"first"}, sink.titles())
}

func TestThrottledNotifier_WindowReopens(t *testing.T) {
	sink := &spySink{}
	throttled := NewThrottledNotifier(sink, 5*time.Second)

	now := time.Now()
	throttled.now = func() time.Time { return now }

	throttled.Notify(models.Notification{Title: "first"})

	now = now.Add(4 * time.Second)
	throttled.Notify(models.Notification{Title: "dropped"})

	now = now.Add(2 * time.Second)
	throttled.Notify(models.Notification{Title: "second"})

	assert.Equal(t, []string{"first", "second"}, sink.titles())
}

func TestThrottledNotifier_DroppedWindowDoesNotExtend(t *testing.T) {
	sink := &spySink{}
	throttled := NewThrottledNotifier(sink, 5*time.Second)

	now := time.Now()
	throttled.now = func() time.Time { return now }

	throttled.Notify(models.Notification{Title: "first"})

	// dropped events must not restart the window
	for i := 0; i < 4; i++ {
		now = now.Add(time.Second)
		throttled.Notify(models.Notification{Title: "dropped"})
	}

	now = now.Add(2 * time.Second)
	throttled.Notify(models.Notification{Title: "second"})

	assert.Equal(t, []string{"first", "second"}, sink.titles())
}
