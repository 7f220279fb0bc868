package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"post-radar/infrastructure/logger"
)

// NewPubSub connects to Google Pub/Sub. Callers treat a nil client as
// "publishing disabled".
func NewPubSub(ctx context.Context, projectID string) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, nil
	}
	return pubsub.NewClient(ctx, projectID)
}

type IRunPubSub interface {
	Publish(ctx context.Context, topicName string, payload []byte) (string, error)
}

type RunPubSub struct {
	client *pubsub.Client
}

func NewRunPubSub(client *pubsub.Client) IRunPubSub {
	return &RunPubSub{client: client}
}

func (p *RunPubSub) Publish(ctx context.Context, topicName string, payload []byte) (string, error) {
	if p.client == nil {
		return "", nil
	}
	topic := p.client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return "", err
	}
	if !exists {
		if _, err = p.client.CreateTopic(ctx, topicName); err != nil {
			return "", err
		}
	}
	serverID, err := topic.Publish(ctx, &pubsub.Message{Data: payload}).Get(ctx)
	if err != nil {
		return "", err
	}
	logger.GetLogger().WithField("server_id", serverID).WithField("topic", topicName).Debug("run summary published")
	return serverID, nil
}
