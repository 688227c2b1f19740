package service

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"doc-chat-be/internal/pkg/logger"
	"doc-chat-be/pkg/events"
)

// IConsumerService consumes core events and accumulates the counters exposed
// on the health endpoint.
type IConsumerService interface {
	Consume(ctx context.Context) error
	UploadsIndexed() int64
	SessionsEvicted() int64
}

type consumerService struct {
	pubSub *gochannel.GoChannel
	log    logger.ILogger

	uploadsIndexed  atomic.Int64
	sessionsEvicted atomic.Int64
}

func NewConsumerService(pubSub *gochannel.GoChannel, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub: pubSub,
		log:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, events.TopicSystemEvents)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	defer msg.Ack()

	var envelope events.Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		cs.log.Warn("consumer", "Dropping malformed event", map[string]interface{}{"error": err.Error()})
		return
	}

	switch envelope.Type {
	case events.TypeSessionIndexed:
		cs.uploadsIndexed.Add(1)
	case events.TypeSessionEvicted:
		cs.sessionsEvicted.Add(1)
	default:
		cs.log.Debug("consumer", "Ignoring unknown event type", map[string]interface{}{"type": envelope.Type})
	}
}

func (cs *consumerService) UploadsIndexed() int64 {
	return cs.uploadsIndexed.Load()
}

func (cs *consumerService) SessionsEvicted() int64 {
	return cs.sessionsEvicted.Load()
}
