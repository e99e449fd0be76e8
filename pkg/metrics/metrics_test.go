package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/benchquest/pkg/events"
)

func TestCollectorCountsEvents(t *testing.T) {
	bus := events.NewBus()
	c := New()
	c.Register(bus, 1)

	bus.Publish(events.Event{Topic: events.QuestCompleted, Subject: "quest-timer-1"})
	bus.Publish(events.Event{Topic: events.TimerCompleted})
	bus.Publish(events.Event{Topic: events.TimerCompleted})
	bus.Publish(events.Event{Topic: events.ChecklistCompleted})
	bus.Publish(events.Event{Topic: events.JournalLogged})
	bus.Publish(events.Event{Topic: events.ProtocolChanged})
	bus.Publish(events.Event{Topic: events.ProtocolRun})
	bus.Publish(events.Event{Topic: events.PlayerLevelUp, Value: 3})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.QuestsCompleted))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.TimersCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ChecklistsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JournalLogs))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProtocolChanges.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProtocolChanges.WithLabelValues("run")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.PlayerLevel))

	c.Unregister()
	bus.Publish(events.Event{Topic: events.JournalLogged})
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JournalLogs))
}

func TestHandlerServesMetrics(t *testing.T) {
	c := New()
	c.Register(events.NewBus(), 2)

	h := c.Middleware(c.Handler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "benchquest_player_level 2"), body)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "200")))
}
