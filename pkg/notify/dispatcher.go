// Package notify publishes domain events to the message fabric. Events are
// fan-out only: no consumer is required for the API to function, and a failed
// publish never fails the triggering request.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/edunexa/edunexa-api/internal/observability"
)

// Event is the wire envelope published for every domain event.
type Event struct {
	ID      string                 `json:"id"`
	Source  string                 `json:"source"`
	Name    string                 `json:"name"`
	Payload map[string]interface{} `json:"payload"`
	SentAt  time.Time              `json:"sent_at"`
}

// Dispatcher mirrors each event to a Redis channel and a NATS subject. Either
// sink may be nil; with both nil the dispatcher is a no-op.
type Dispatcher struct {
	redis       *redis.Client
	redisChan   string
	nats        *nats.Conn
	subjectBase string
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
	nodeID      string
	now         func() time.Time
}

// NewDispatcher constructs a dispatcher. channelBase names both sinks: the
// Redis channel is "<base>:events" and NATS subjects are "<base>.<event>".
func NewDispatcher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) *Dispatcher {
	redisChan := ""
	subjectBase := ""
	if channelBase != "" {
		redisChan = channelBase + ":events"
		subjectBase = strings.ReplaceAll(channelBase, ":", ".")
	}

	return &Dispatcher{
		redis:       redisClient,
		redisChan:   redisChan,
		nats:        natsConn,
		subjectBase: subjectBase,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "notify_dispatcher").Logger(),
		nodeID:      uuid.NewString(),
		now:         time.Now,
	}
}

// Notify publishes one event. String payload values are sanitized before they
// leave the process; subscribers must never receive markup.
func (d *Dispatcher) Notify(ctx context.Context, event string, payload map[string]interface{}) error {
	name := strings.TrimSpace(strings.ToLower(event))
	if name == "" {
		return errors.New("event name is required")
	}

	envelope := Event{
		ID:      uuid.NewString(),
		Source:  d.nodeID,
		Name:    name,
		Payload: d.sanitizePayload(payload),
		SentAt:  d.now().UTC(),
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}

	observability.EventsPublished().WithLabelValues(name).Inc()

	var firstErr error

	if d.redis != nil && d.redisChan != "" {
		if err := d.redis.Publish(ctx, d.redisChan, data).Err(); err != nil {
			d.logger.Warn().Err(err).Str("event", name).Msg("redis publish failed")
			firstErr = err
		}
	}

	if d.nats != nil && d.subjectBase != "" {
		if err := d.nats.Publish(d.subjectBase+"."+name, data); err != nil {
			d.logger.Warn().Err(err).Str("event", name).Msg("nats publish failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}

func (d *Dispatcher) sanitizePayload(payload map[string]interface{}) map[string]interface{} {
	if payload == nil {
		return nil
	}

	clean := make(map[string]interface{}, len(payload))
	for key, value := range payload {
		if text, ok := value.(string); ok {
			clean[key] = d.sanitizer.Sanitize(text)
			continue
		}
		clean[key] = value
	}
	return clean
}
