package stress

import (
	"context"
	"testing"
	"time"

	"github.com/alekspetrov/taskpilot/internal/comms"
	"github.com/alekspetrov/taskpilot/internal/conversation"
	"github.com/alekspetrov/taskpilot/internal/tasks"
	"github.com/alekspetrov/taskpilot/internal/testutil"
)

type harness struct {
	store     *tasks.Store
	states    *conversation.StateStore
	handler   *comms.Handler
	messenger *testutil.RecordingMessenger
	metrics   *Metrics
}

func newHarness(t *testing.T, ttl time.Duration) *harness {
	t.Helper()

	store := testutil.OpenStore(t)
	states := conversation.NewStateStore(ttl)
	messenger := &testutil.RecordingMessenger{}
	handler := comms.NewHandler(&comms.HandlerConfig{
		Messenger: messenger,
		Tasks:     store,
		Machine:   conversation.NewMachine(store, states),
		RateLimit: &comms.RateLimitConfig{Enabled: false},
	})

	return &harness{
		store:     store,
		states:    states,
		handler:   handler,
		messenger: messenger,
		metrics:   NewMetrics(),
	}
}

// send pushes one message from owner through the dispatcher.
func (h *harness) send(owner, text string) {
	h.metrics.RecordMessageStart()
	start := time.Now()
	h.handler.HandleMessage(context.Background(), &comms.IncomingMessage{
		ContextID: owner,
		SenderID:  owner,
		Username:  owner,
		Text:      text,
	})
	h.metrics.RecordMessageDone(time.Since(start))
}
