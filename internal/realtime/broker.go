// Package realtime carries change notifications from the store to the data
// hooks. Every row mutation is published as a table-scoped INSERT, UPDATE or
// DELETE event; hooks subscribe per table and receive a teardown handle that
// must be called when the owning view-model goes away.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feconecta/feconecta-api/internal/observability"
)

const subscriberBufferSize = 16

// TableAll subscribes to events from every table.
const TableAll = "*"

// EventType enumerates the change kinds delivered by the store.
type EventType string

// Change event kinds.
const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is a single change notification for a row of a named table.
type Event struct {
	Table string          `json:"table"`
	Type  EventType       `json:"type"`
	Row   json.RawMessage `json:"row"`
}

// NewRowEvent builds an event carrying the JSON projection of row.
func NewRowEvent(table string, kind EventType, row interface{}) (Event, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return Event{}, err
	}

	return Event{Table: table, Type: kind, Row: payload}, nil
}

type envelope struct {
	Source string    `json:"source"`
	Event  Event     `json:"event"`
	SentAt time.Time `json:"sent_at"`
}

// Broker fans change events out to in-process subscribers and, when
// configured, mirrors them across nodes over redis pub/sub and NATS.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	nodeID      string
}

// NewBroker constructs a change-event broker. redisClient and natsConn may
// be nil; the broker then works purely in-process.
func NewBroker(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *Broker {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":changes"
		subject = channelBase + ".changes"
	}

	return &Broker{
		subscribers: make(map[string]map[chan Event]struct{}),
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "realtime_broker").Logger(),
		nodeID:      uuid.NewString(),
	}
}

// Start launches the cross-node consumers. It returns immediately; consumers
// stop when ctx is cancelled.
func (b *Broker) Start(ctx context.Context) {
	if b.redis != nil && b.redisStream != "" {
		go b.consumeRedis(ctx)
	}
	if b.nats != nil && b.natsSubject != "" {
		go b.consumeNATS(ctx)
	}
}

// Publish delivers the event to local subscribers and mirrors it to the
// configured brokers. Mirror failures are logged, never propagated: local
// consistency does not depend on the fan-out path.
func (b *Broker) Publish(ctx context.Context, event Event) {
	observability.RealtimeEvents().WithLabelValues(event.Table, string(event.Type)).Inc()
	b.broadcast(event)

	if err := b.mirror(ctx, event); err != nil {
		b.logger.Warn().Err(err).Str("table", event.Table).Msg("failed to mirror change event")
	}
}

// Subscribe registers interest in one table (or TableAll) and returns the
// event channel together with its teardown. The teardown closes the channel
// and must be called exactly once.
func (b *Broker) Subscribe(table string) (<-chan Event, func()) {
	channel := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if _, exists := b.subscribers[table]; !exists {
		b.subscribers[table] = make(map[chan Event]struct{})
	}
	b.subscribers[table][channel] = struct{}{}
	b.mu.Unlock()

	observability.RealtimeSubscribers().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			b.unsubscribe(table, channel)
			observability.RealtimeSubscribers().Dec()
		})
	}

	return channel, cleanup
}

func (b *Broker) unsubscribe(table string, channel chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subscribers, ok := b.subscribers[table]; ok {
		delete(subscribers, channel)
		close(channel)
		if len(subscribers) == 0 {
			delete(b.subscribers, table)
		}
	}
}

func (b *Broker) broadcast(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, key := range []string{event.Table, TableAll} {
		for channel := range b.subscribers[key] {
			select {
			case channel <- event:
			default:
				// slow consumer, drop
			}
		}
	}
}

func (b *Broker) mirror(ctx context.Context, event Event) error {
	if (b.redis == nil || b.redisStream == "") && (b.nats == nil || b.natsSubject == "") {
		return nil
	}

	payload, err := json.Marshal(envelope{Source: b.nodeID, Event: event, SentAt: time.Now().UTC()})
	if err != nil {
		return err
	}

	if b.redis != nil && b.redisStream != "" {
		if err := b.redis.Publish(ctx, b.redisStream, payload).Err(); err != nil {
			return err
		}
	}

	if b.nats != nil && b.natsSubject != "" {
		if err := b.nats.Publish(b.natsSubject+"."+event.Table, payload); err != nil {
			return err
		}
	}

	return nil
}

func (b *Broker) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisStream)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			b.logger.Error().Err(err).Msg("change event redis subscription closed")
			return
		}
		b.handleMirrored([]byte(msg.Payload))
	}
}

func (b *Broker) consumeNATS(ctx context.Context) {
	sub, err := b.nats.Subscribe(b.natsSubject+".>", func(msg *nats.Msg) {
		b.handleMirrored(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to nats change subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain nats change subscription")
		}
	}()
}

func (b *Broker) handleMirrored(payload []byte) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		b.logger.Warn().Err(err).Msg("invalid change event payload")
		return
	}

	if env.Source == b.nodeID {
		return
	}

	observability.RealtimeEvents().WithLabelValues(env.Event.Table, string(env.Event.Type)).Inc()
	b.broadcast(env.Event)
}
