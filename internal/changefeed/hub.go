package changefeed

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/zhulik/pips"
	"github.com/zhulik/pips/apply"

	"openfeed/internal/core"
	"openfeed/internal/nats"
	"openfeed/pkg/retry"
)

var (
	eventsDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "openfeed_changefeed_events_total",
		Help: "Change-feed events consumed from the stream, by table.",
	}, []string{"table"})

	connectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "openfeed_changefeed_clients",
		Help: "Currently connected change-feed websocket clients.",
	})
)

const (
	consumerName = "changefeed-hub"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second

	// Slow clients get dropped events, not backpressure on the hub.
	clientBuffer = 64
)

// Hub consumes the change-feed stream and fans events out to connected
// websocket clients, each optionally filtered to a set of tables.
type Hub struct {
	Logger *slog.Logger
	NATS   *nats.NATS

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn   *websocket.Conn
	tables map[string]struct{}
	send   chan core.ChangeEvent
}

func (h *Hub) Init(_ context.Context) error {
	h.Logger = h.Logger.With("component", "changefeed.Hub")
	h.clients = map[*client]struct{}{}
	return nil
}

func (h *Hub) Run(ctx context.Context) error {
	var consumer jetstream.Consumer

	err := retry.Do(ctx, 5, time.Second, func() error {
		var err error
		consumer, err = h.NATS.JS.CreateOrUpdateConsumer(ctx, nats.StreamName, jetstream.ConsumerConfig{
			Durable:       consumerName,
			FilterSubject: nats.SubjectPrefix + "*",
			AckPolicy:     jetstream.AckExplicitPolicy,
			DeliverPolicy: jetstream.DeliverNewPolicy,
		})
		return err
	})
	if err != nil {
		return err
	}

	msgs := make(chan jetstream.Msg)

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		select {
		case <-ctx.Done():
		case msgs <- msg:
		}
	})
	if err != nil {
		return err
	}
	defer cc.Stop()

	return pips.New[jetstream.Msg, any]().
		Then(apply.Each(h.handle)).
		Run(ctx, msgs).
		Wait(ctx)
}

func (h *Hub) handle(_ context.Context, msg jetstream.Msg) error {
	var event core.ChangeEvent

	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		h.Logger.Error("dropping undecodable change event", "error", err, "subject", msg.Subject())
		return msg.Term()
	}

	eventsDelivered.WithLabelValues(event.Table).Inc()
	h.broadcast(event)

	return msg.Ack()
}

func (h *Hub) broadcast(event core.ChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if len(c.tables) > 0 {
			if _, ok := c.tables[event.Table]; !ok {
				continue
			}
		}
		select {
		case c.send <- event:
		default:
		}
	}
}

// Serve pumps change events to one websocket connection until the client
// disconnects or the context ends. An empty tables set subscribes to
// everything.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn, tables []string) error {
	c := &client{
		conn:   conn,
		tables: map[string]struct{}{},
		send:   make(chan core.ChangeEvent, clientBuffer),
	}
	for _, table := range tables {
		c.tables[table] = struct{}{}
	}

	h.register(c)
	defer h.unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Inbound frames are ignored, the read loop only notices disconnects.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case event := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := conn.WriteJSON(event); err != nil {
				return nil
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	connectedClients.Set(float64(len(h.clients)))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
	connectedClients.Set(float64(len(h.clients)))
}
