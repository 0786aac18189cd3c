package statuscheck

import (
    "bytes"
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/local/printdesk/internal/imagerender"
    "github.com/local/printdesk/internal/order"
    "github.com/local/printdesk/internal/pdftest"
)

// RedisPinger models the minimal Redis capability we need for status checks.
type RedisPinger interface {
    Ping(ctx context.Context) error
}

// StoragePinger is the part of storage.Backend the checker uses.
type StoragePinger interface {
    Name() string
    Ping(ctx context.Context) error
}

// Checker aggregates health checks for the services an upload depends on.
type Checker struct {
    redis   RedisPinger
    storage StoragePinger
    counter order.PageCounter
}

// Options configures the Checker.
type Options struct {
    Redis   RedisPinger
    Storage StoragePinger
    Counter order.PageCounter
}

// Status represents the readiness of a subsystem.
type Status struct {
    OK      bool   `json:"ok"`
    Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
    Redis   Status `json:"redis"`
    Storage Status `json:"storage"`
    PDFCPU  Status `json:"pdfcpu"`
    MuPDF   Status `json:"mupdf"`
}

// Healthy reports whether everything required for uploads is up. Redis is
// optional and only counted when configured.
func (s Summary) Healthy() bool {
    return s.Storage.OK && s.PDFCPU.OK && s.MuPDF.OK && (s.Redis.OK || s.Redis.Message == notConfigured)
}

const notConfigured = "Not configured"

// New creates a new Checker with the provided options.
func New(opts Options) *Checker {
    counter := opts.Counter
    if counter == nil {
        counter = order.PDFCounter{}
    }
    return &Checker{redis: opts.Redis, storage: opts.Storage, counter: counter}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
    probe := pdftest.Blank(1)
    return Summary{
        Redis:   c.checkRedis(ctx),
        Storage: c.checkStorage(ctx),
        PDFCPU:  c.checkPDFCPU(ctx, probe),
        MuPDF:   c.checkMuPDF(probe),
    }
}

func (c *Checker) checkRedis(ctx context.Context) Status {
    if c.redis == nil {
        return Status{OK: false, Message: notConfigured}
    }
    ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
    defer cancel()
    if err := c.redis.Ping(ctx); err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    return Status{OK: true, Message: "Connected"}
}

func (c *Checker) checkStorage(ctx context.Context) Status {
    if c.storage == nil {
        return Status{OK: false, Message: notConfigured}
    }
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    if err := c.storage.Ping(ctx); err != nil {
        return Status{OK: false, Message: c.storage.Name() + ": " + trimError(err)}
    }
    return Status{OK: true, Message: c.storage.Name() + ": Connected"}
}

func (c *Checker) checkPDFCPU(ctx context.Context, probe []byte) Status {
    n, err := c.counter.CountPages(ctx, bytes.NewReader(probe))
    if err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    if n != 1 {
        return Status{OK: false, Message: fmt.Sprintf("probe counted %d pages", n)}
    }
    return Status{OK: true, Message: "Available"}
}

func (c *Checker) checkMuPDF(probe []byte) Status {
    n, err := imagerender.PDFPageCount(probe)
    if err != nil {
        return Status{OK: false, Message: trimError(err)}
    }
    if n != 1 {
        return Status{OK: false, Message: fmt.Sprintf("probe counted %d pages", n)}
    }
    return Status{OK: true, Message: "Available"}
}

func trimError(err error) string {
    if err == nil {
        return ""
    }
    var netErr interface{ Timeout() bool }
    if errors.As(err, &netErr) && netErr.Timeout() {
        return "timeout"
    }
    msg := err.Error()
    if len(msg) > 120 {
        return msg[:120]
    }
    return msg
}
