package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"

	"fittlyfans/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "fittlyfans:conv:"

// Fanout relays conversation events between API instances over Redis pub/sub.
type Fanout struct {
	rdb *redis.Client
}

// NewFanout wraps rdb, which may be nil.
func NewFanout(rdb *redis.Client) *Fanout {
	return &Fanout{rdb: rdb}
}

// Enabled reports whether a Redis client is attached.
func (f *Fanout) Enabled() bool {
	return f != nil && f.rdb != nil
}

func channelFor(conversationID uint) string {
	return fmt.Sprintf("%s%d", channelPrefix, conversationID)
}

func parseChannel(channel string) (uint, bool) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// Publish sends payload to the conversation's channel.
func (f *Fanout) Publish(ctx context.Context, conversationID uint, payload []byte) error {
	return f.rdb.Publish(ctx, channelFor(conversationID), payload).Err()
}

// Subscribe blocks, calling deliver for every event, until ctx is done or
// the subscription drops. ready runs once Redis has confirmed the
// subscription.
func (f *Fanout) Subscribe(ctx context.Context, ready func(), deliver func(conversationID uint, payload []byte)) error {
	sub := f.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer func() { _ = sub.Close() }()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	if ready != nil {
		ready()
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			id, valid := parseChannel(msg.Channel)
			if !valid {
				middleware.Logger.Warn("invalid realtime channel", slog.String("channel", msg.Channel))
				continue
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						middleware.Logger.Error("panic delivering realtime event",
							slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
					}
				}()
				deliver(id, []byte(msg.Payload))
			}()
		}
	}
}
