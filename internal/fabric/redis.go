package fabric

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// resubscribeDelay is the fixed backoff between attempts to rejoin the
// fabric after a dropped subscription.
const resubscribeDelay = 5 * time.Second

// RedisFabric implements Fabric on top of Redis pub/sub.
type RedisFabric struct {
	client *redis.Client
}

func NewRedisFabric(client *redis.Client) *RedisFabric {
	return &RedisFabric{client: client}
}

var _ Fabric = (*RedisFabric)(nil)

func (f *RedisFabric) Publish(ctx context.Context, channel string, payload []byte) error {
	return f.client.Publish(ctx, channel, payload).Err()
}

// Subscribe blocks until ctx is cancelled. A broken subscription is
// reopened after a fixed delay; losing the fabric is always treated as
// transient.
func (f *RedisFabric) Subscribe(ctx context.Context, channel string, handler Handler) {
	for {
		pubsub := f.client.Subscribe(ctx, channel)

		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
			case <-done:
			}
			pubsub.Close()
		}()

		for msg := range pubsub.Channel() {
			handler([]byte(msg.Payload))
		}
		close(done)

		select {
		case <-ctx.Done():
			return
		case <-time.After(resubscribeDelay):
			log.Printf("fabric: resubscribing to %q", channel)
		}
	}
}
