// Package notify publishes engine events to interested listeners.
// Publication is fire-and-forget: failures are logged by the
// implementation and never propagate to the operation that triggered
// them.
package notify

import (
	"context"

	"github.com/muralvote/muralvote/internal/logging"
)

// Topics published by the engine.
const (
	TopicElectionNew       = "election.new"
	TopicElectionUpdate    = "election.update"
	TopicCandidateNew      = "candidate.new"
	TopicCandidateApproved = "candidate.approved"
	TopicCandidateDenied   = "candidate.denied"
)

// Notifier publishes an event on a topic.
type Notifier interface {
	Publish(ctx context.Context, topic string, payload map[string]any)
}

// LogNotifier writes events to the structured log. It stands in for a
// message bus in deployments that do not run one.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notifier")}
}

func (n *LogNotifier) Publish(ctx context.Context, topic string, payload map[string]any) {
	args := make([]any, 0, 2+2*len(payload))
	args = append(args, "topic", topic)
	for k, v := range payload {
		args = append(args, k, v)
	}
	n.log.Info(ctx, "event published", args...)
}

// NopNotifier discards everything; used in tests.
type NopNotifier struct{}

func (NopNotifier) Publish(ctx context.Context, topic string, payload map[string]any) {}
