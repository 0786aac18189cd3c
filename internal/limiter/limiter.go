package limiter

import (
    "context"
    "fmt"
    "strings"
    "time"

    redis "github.com/redis/go-redis/v9"
)

// Window is a fixed-window request counter shared through Redis, so every
// server instance sees the same budget per client key.
type Window struct {
    rdb    *redis.Client
    limit  int
    window time.Duration
    prefix string
}

type Options struct {
    RedisURL string
    Limit    int
    Window   time.Duration
    Prefix   string
}

func New(opts Options) (*Window, error) {
    if opts.Limit <= 0 { opts.Limit = 20 }
    if opts.Window <= 0 { opts.Window = time.Minute }
    if opts.Prefix == "" { opts.Prefix = "printdesk:rl" }
    ro, err := redis.ParseURL(opts.RedisURL)
    if err != nil { return nil, err }
    c := redis.NewClient(ro)
    if err := c.Ping(context.Background()).Err(); err != nil {
        _ = c.Close()
        return nil, err
    }
    return &Window{rdb: c, limit: opts.Limit, window: opts.Window, prefix: opts.Prefix}, nil
}

func (w *Window) key(client string, now time.Time) string {
    slot := now.UnixNano() / int64(w.window)
    return fmt.Sprintf("%s:%s:%d", w.prefix, strings.ToLower(client), slot)
}

// Allow counts one request for client in the current window and reports
// whether it is within the limit.
func (w *Window) Allow(ctx context.Context, client string) (bool, error) {
    k := w.key(client, time.Now())
    pipe := w.rdb.TxPipeline()
    incr := pipe.Incr(ctx, k)
    pipe.Expire(ctx, k, w.window)
    if _, err := pipe.Exec(ctx); err != nil {
        return false, err
    }
    return incr.Val() <= int64(w.limit), nil
}

// Ping satisfies statuscheck.RedisPinger.
func (w *Window) Ping(ctx context.Context) error { return w.rdb.Ping(ctx).Err() }

func (w *Window) Limit() int { return w.limit }

func (w *Window) CloseClient() error { return w.rdb.Close() }
