package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	libnats "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"openfeed/internal/core"
	"openfeed/internal/nats"
)

// Publisher writes row-change events to the change-feed stream. Each event
// carries a message id so JetStream deduplicates accidental double
// publishes.
type Publisher struct {
	Logger *slog.Logger
	NATS   *nats.NATS
}

func (p *Publisher) Init(_ context.Context) error {
	p.Logger = p.Logger.With("component", "changefeed.Publisher")
	return nil
}

func (p *Publisher) Publish(ctx context.Context, event core.ChangeEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &libnats.Msg{
		Subject: nats.SubjectPrefix + event.Table,
		Data:    payload,
		Header:  libnats.Header{},
	}
	msg.Header.Set(jetstream.MsgIDHeader, event.ID)

	_, err = p.NATS.JS.PublishMsg(ctx, msg)
	return err
}
