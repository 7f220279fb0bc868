package notifier

import (
	"context"
	"encoding/json"

	"post-radar/domain/model"
	"post-radar/infrastructure/logger"
	"post-radar/infrastructure/pubsub"
	"post-radar/infrastructure/servicebus"
)

// RunNotifier fans finished-run summaries out to the configured message
// buses. Both sinks are optional; publishing is best effort and never fails
// a run.
type RunNotifier struct {
	pubsub     pubsub.IRunPubSub
	topic      string
	servicebus servicebus.IRunServiceBus
	queue      string
}

func NewRunNotifier(ps pubsub.IRunPubSub, topic string, sb servicebus.IRunServiceBus, queue string) *RunNotifier {
	return &RunNotifier{pubsub: ps, topic: topic, servicebus: sb, queue: queue}
}

type runEnvelope struct {
	Kind    string      `json:"kind"`
	Summary interface{} `json:"summary"`
}

func (n *RunNotifier) NotifyFetch(ctx context.Context, log *model.FetchLog) {
	n.send(ctx, runEnvelope{Kind: "fetch_run", Summary: log})
}

func (n *RunNotifier) NotifyTranslate(ctx context.Context, log *model.TranslateLog) {
	n.send(ctx, runEnvelope{Kind: "translate_run", Summary: log})
}

func (n *RunNotifier) send(ctx context.Context, env runEnvelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("failed marshaling run summary")
		return
	}
	if n.pubsub != nil && n.topic != "" {
		if _, err := n.pubsub.Publish(ctx, n.topic, payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("pubsub run summary publish failed")
		}
	}
	if n.servicebus != nil && n.queue != "" {
		if err := n.servicebus.SendMessage(ctx, n.queue, payload); err != nil {
			logger.GetLogger().WithField("error", err).Warn("service bus run summary publish failed")
		}
	}
}
