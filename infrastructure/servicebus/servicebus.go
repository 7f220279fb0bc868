package servicebus

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"post-radar/infrastructure/logger"
)

// NewServiceBus connects to an Azure Service Bus namespace using the default
// credential chain. A nil client disables Service Bus notifications.
func NewServiceBus(_ context.Context, namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, nil
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, err
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

type IRunServiceBus interface {
	SendMessage(ctx context.Context, queue string, payload []byte) error
}

type RunServiceBus struct {
	client *azservicebus.Client
}

func NewRunServiceBus(client *azservicebus.Client) IRunServiceBus {
	return &RunServiceBus{client: client}
}

func (s *RunServiceBus) SendMessage(ctx context.Context, queue string, payload []byte) error {
	if s.client == nil {
		return nil
	}
	sender, err := s.client.NewSender(queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return err
	}
	defer func() {
		if cerr := sender.Close(ctx); cerr != nil {
			logger.GetLogger().WithField("error", cerr).Error("Error while closing sender.")
		}
	}()
	return sender.SendMessage(ctx, &azservicebus.Message{Body: payload}, nil)
}
