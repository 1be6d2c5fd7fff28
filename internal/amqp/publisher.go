package amqp

import (
	"context"

	applog "moneylog/internal/log"
	"moneylog/internal/session"
)

const publishBuffer = 64

// Sender delivers one event message.
type Sender interface {
	Publish(ctx context.Context, msg *EventMessage) error
}

// Publisher forwards session events to a Sender from a background loop so
// that saves never wait on the broker.
type Publisher struct {
	sender Sender
	logger *applog.Logger
	queue  chan *EventMessage
}

func NewPublisher(sender Sender, logger *applog.Logger) *Publisher {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Publisher{
		sender: sender,
		logger: logger.WithComponent(applog.ComponentAMQP),
		queue:  make(chan *EventMessage, publishBuffer),
	}
}

// Attach subscribes to s. Events arriving while the buffer is full are
// dropped and logged.
func (p *Publisher) Attach(s *session.Session) (detach func()) {
	return s.Subscribe(func(ev session.Event) {
		msg := NewEventMessage(ev)
		select {
		case p.queue <- msg:
		default:
			p.logger.Warn("Event buffer full, dropping message", "kind", msg.Kind)
		}
	})
}

// Run publishes queued messages until ctx is done. Publish failures are
// logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Event publisher started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Event publisher stopped", "pending", len(p.queue))
			return nil
		case msg := <-p.queue:
			if err := p.sender.Publish(ctx, msg); err != nil {
				p.logger.ErrorContext(ctx, "Failed to publish event", applog.NewFields().
					WithOperation(applog.OpPublish).
					WithError(err).
					ToSlice()...)
			}
		}
	}
}
