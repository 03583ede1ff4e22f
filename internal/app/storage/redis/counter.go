// Package redis implements the usage CounterStore on Redis. INCR gives the
// atomic increment the gate requires when several study completions for one
// install are in flight at once.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"github.com/berea-labs/study_layer/internal/app/storage"
)

// Counter implements storage.CounterStore.
type Counter struct {
	client *goredis.Client
	prefix string
}

var _ storage.CounterStore = (*Counter)(nil)

// NewCounter wraps an existing redis client. Keys are stored under
// "<prefix>:<install_id>".
func NewCounter(client *goredis.Client, prefix string) *Counter {
	if prefix == "" {
		prefix = "study_count"
	}
	return &Counter{client: client, prefix: prefix}
}

func (c *Counter) key(installID string) string {
	return fmt.Sprintf("%s:%s", c.prefix, installID)
}

func (c *Counter) GetCount(ctx context.Context, installID string) (int, error) {
	count, err := c.client.Get(ctx, c.key(installID)).Int()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (c *Counter) IncrementCount(ctx context.Context, installID string) (int, error) {
	count, err := c.client.Incr(ctx, c.key(installID)).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
