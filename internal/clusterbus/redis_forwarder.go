// Package clusterbus optionally fans Event Bus events out across multiple
// coordinator processes over Redis pub/sub, adapted from the teacher's
// services.redisSSEBus. The core coordinator never requires this: with no
// REDIS_ADDR configured the Event Bus runs in-memory only (spec §4.5).
package clusterbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/distcluster/coordinator/internal/cluster/events"
	"github.com/distcluster/coordinator/internal/logger"
)

// Forwarder republishes locally-emitted events on a shared Redis channel and
// re-broadcasts events published by other coordinator processes into the
// local Event Bus.
type Forwarder struct {
	log     *logger.Logger
	rdb     *redis.Client
	channel string
	bus     *events.Bus
}

// New dials Redis and verifies connectivity; callers should treat a non-nil
// error as "run without cross-process fan-out" rather than a fatal error.
func New(addr, channel string, bus *events.Bus, log *logger.Logger) (*Forwarder, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DialTimeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Forwarder{
		log:     log.With("component", "ClusterBusForwarder"),
		rdb:     rdb,
		channel: channel,
		bus:     bus,
	}, nil
}

// Publish republishes an event for other coordinator processes to pick up.
func (f *Forwarder) Publish(ctx context.Context, ev events.Event) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, f.channel, raw).Err()
}

// Run subscribes to the shared channel and re-broadcasts every message onto
// the local Event Bus until ctx is cancelled.
func (f *Forwarder) Run(ctx context.Context) error {
	sub := f.rdb.Subscribe(ctx, f.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok || msg == nil {
				return nil
			}
			var ev events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				f.log.Warn("bad cluster-bus payload", "error", err)
				continue
			}
			ev.Remote = true
			f.bus.Publish(ev)
		}
	}
}

func (f *Forwarder) Close() error {
	if f == nil || f.rdb == nil {
		return nil
	}
	return f.rdb.Close()
}
