package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"currency-tracker/internal/domain/ports"
	"currency-tracker/pkg/logger"
	"currency-tracker/pkg/utils"
)

const (
	keyLastUpdated  = "last_updated"
	keySourceCode   = "source_currency_code"
	keyTargetCode   = "target_currency_code"
	channelSuffix   = ":changed"
	watchBufferSize = 8
)

var _ ports.PreferencesStore = (*RedisPreferences)(nil)

// RedisPreferences persists the freshness timestamp and selected currency
// codes under prefixed keys. Every selection write is also published on a
// per-key channel, so watchers see changes from any process.
type RedisPreferences struct {
	client *redis.Client
	prefix string
	log    *logger.Logger
}

func NewRedisPreferences(client *redis.Client, prefix string, log *logger.Logger) *RedisPreferences {
	return &RedisPreferences{
		client: client,
		prefix: prefix,
		log:    log,
	}
}

func (p *RedisPreferences) key(name string) string {
	return p.prefix + name
}

func (p *RedisPreferences) SaveLastUpdated(ctx context.Context, t time.Time) error {
	millis := strconv.FormatInt(t.UnixMilli(), 10)
	if err := p.client.Set(ctx, p.key(keyLastUpdated), millis, 0).Err(); err != nil {
		return fmt.Errorf("failed to save last-updated timestamp: %w", err)
	}
	p.log.Debug("Saved last-updated timestamp", "millis", millis)
	return nil
}

func (p *RedisPreferences) LastUpdated(ctx context.Context) (time.Time, bool, error) {
	val, err := p.client.Get(ctx, p.key(keyLastUpdated)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last-updated timestamp: %w", err)
	}

	millis, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("malformed last-updated timestamp %q: %w", val, err)
	}
	return time.UnixMilli(millis), true, nil
}

func (p *RedisPreferences) IsDataFresh(ctx context.Context, now time.Time) (bool, error) {
	saved, ok, err := p.LastUpdated(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		// Never refreshed; data cannot be fresh.
		return false, nil
	}
	return utils.SameCalendarDay(saved, now), nil
}

func (p *RedisPreferences) SaveSourceCurrencyCode(ctx context.Context, code string) error {
	return p.saveCode(ctx, keySourceCode, code)
}

func (p *RedisPreferences) SaveTargetCurrencyCode(ctx context.Context, code string) error {
	return p.saveCode(ctx, keyTargetCode, code)
}

func (p *RedisPreferences) saveCode(ctx context.Context, name, code string) error {
	key := p.key(name)
	if err := p.client.Set(ctx, key, code, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", name, err)
	}
	if err := p.client.Publish(ctx, key+channelSuffix, code).Err(); err != nil {
		// The value is persisted; only the notification failed. Watchers in
		// this and other processes miss a tick, the next read catches up.
		p.log.Error("Failed to publish preference change", "key", name, "error", err)
	}
	return nil
}

func (p *RedisPreferences) WatchSourceCurrencyCode(ctx context.Context) (<-chan string, error) {
	return p.watchCode(ctx, keySourceCode)
}

func (p *RedisPreferences) WatchTargetCurrencyCode(ctx context.Context) (<-chan string, error) {
	return p.watchCode(ctx, keyTargetCode)
}

func (p *RedisPreferences) watchCode(ctx context.Context, name string) (<-chan string, error) {
	key := p.key(name)

	sub := p.client.Subscribe(ctx, key+channelSuffix)
	// Force the subscription to be established before the initial read, so
	// no write can fall between the two.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s changes: %w", name, err)
	}

	current, err := p.client.Get(ctx, key).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	out := make(chan string, watchBufferSize)
	go func() {
		defer close(out)
		defer func() {
			if err := sub.Close(); err != nil {
				p.log.Error("Failed to close preference subscription", "key", name, "error", err)
			}
		}()

		if current != "" {
			select {
			case out <- current:
			case <-ctx.Done():
				return
			}
		}

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
