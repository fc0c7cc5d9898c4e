// Tilegate - Map Tile and Time-Series Query Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tilegate

package events

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/tilegate/internal/logging"
)

// Subscriber is satisfied by *Bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
}

// TileURLBroadcaster is satisfied by *websocket.Hub.
type TileURLBroadcaster interface {
	BroadcastTileURL(url string, sequence uint64)
}

// Forwarder relays TokenRefreshed events to websocket clients.
type Forwarder struct {
	sub         Subscriber
	broadcaster TileURLBroadcaster
}

// NewForwarder creates a Forwarder.
func NewForwarder(sub Subscriber, broadcaster TileURLBroadcaster) *Forwarder {
	return &Forwarder{sub: sub, broadcaster: broadcaster}
}

// RunWithContext subscribes and forwards until ctx is canceled or the bus
// closes. Malformed messages are acked and dropped.
func (f *Forwarder) RunWithContext(ctx context.Context) error {
	msgs, err := f.sub.Subscribe(ctx, TopicTokenRefreshed)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", TopicTokenRefreshed, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("%s subscription closed", TopicTokenRefreshed)
			}
			f.handle(msg)
		}
	}
}

func (f *Forwarder) handle(msg *message.Message) {
	defer msg.Ack()

	var ev TokenRefreshed
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		logging.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("Dropping malformed token refreshed event")
		return
	}

	f.broadcaster.BroadcastTileURL(ev.TileBaseURL, ev.Sequence)
	logging.Debug().
		Uint64("sequence", ev.Sequence).
		Str("correlation_id", msg.Metadata.Get(MetadataCorrelationID)).
		Msg("Forwarded tile URL refresh")
}
