// Package presence is the out-of-band membership registry. Heartbeat
// records expire on their own TTL; rooms are told about joins and leaves
// explicitly and never poll the store.
package presence

import (
	"context"
	"time"
)

// DefaultTTL bounds heartbeat staleness. Clients must re-send heartbeats at
// an interval shorter than this.
const DefaultTTL = 60 * time.Second

type Store interface {
	// Heartbeat upserts the record for viewerID on channel with the store TTL.
	Heartbeat(ctx context.Context, channel, viewerID string) error
	// Remove deletes the record. Removing an absent record is not an error.
	Remove(ctx context.Context, channel, viewerID string) error
	// CountChannel counts the live (non-expired) records for channel.
	CountChannel(ctx context.Context, channel string) (int, error)
}

func recordKey(channel, viewerID string) string {
	return "presence:" + channel + ":" + viewerID
}

func channelPrefix(channel string) string {
	return "presence:" + channel + ":"
}
