// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/logging"
	"github.com/tomtom215/tilegate/internal/metrics"
)

// TopicTokenRefreshed carries TokenRefreshed payloads.
const TopicTokenRefreshed = "tiles.token.refreshed"

// Metadata keys set on every message.
const (
	MetadataEventType     = "event_type"
	MetadataCorrelationID = "correlation_id"
)

// TokenRefreshed is published after a successful token exchange.
type TokenRefreshed struct {
	Sequence    uint64    `json:"sequence"`
	TileBaseURL string    `json:"tile_base_url"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Bus publishes and subscribes gateway events.
type Bus struct {
	pubsub *gochannel.GoChannel
}

// NewBus creates a non-persistent in-memory bus. Publish does not wait for
// subscribers; events published with no subscriber are dropped.
func NewBus() *Bus {
	logger := watermill.NewSlogLogger(logging.NewSlogLoggerForComponent("events"))
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

// PublishTokenRefreshed implements tiles.Publisher.
func (b *Bus) PublishTokenRefreshed(ctx context.Context, sequence uint64, tileBaseURL string) error {
	payload, err := json.Marshal(TokenRefreshed{
		Sequence:    sequence,
		TileBaseURL: tileBaseURL,
		RefreshedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode token refreshed event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(MetadataEventType, TopicTokenRefreshed)
	if id := logging.CorrelationIDFromContext(ctx); id != "" {
		msg.Metadata.Set(MetadataCorrelationID, id)
	}

	if err := b.pubsub.Publish(TopicTokenRefreshed, msg); err != nil {
		return fmt.Errorf("publish %s: %w", TopicTokenRefreshed, err)
	}
	metrics.RecordEventPublished(TopicTokenRefreshed)
	return nil
}

// Subscribe returns a channel of messages on topic until ctx is canceled.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close stops delivery to all subscribers.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
