package statuscheck

import (
    "context"
    "errors"
    "io"
    "strings"
    "testing"

    "github.com/local/printdesk/internal/pdftest"
)

type fakePinger struct{ err error }

func (f fakePinger) Name() string                  { return "fake" }
func (f fakePinger) Ping(ctx context.Context) error { return f.err }

type fakeCounter struct {
    n   int
    err error
}

func (f fakeCounter) CountPages(ctx context.Context, rs io.ReadSeeker) (int, error) { return f.n, f.err }

func TestCheckRedisAndStorage(t *testing.T) {
    c := New(Options{Storage: fakePinger{}, Counter: fakeCounter{n: 1}})
    ctx := context.Background()

    if s := c.checkRedis(ctx); s.OK || s.Message != notConfigured {
        t.Errorf("redis without client = %+v", s)
    }
    if s := c.checkStorage(ctx); !s.OK || !strings.HasPrefix(s.Message, "fake") {
        t.Errorf("storage = %+v", s)
    }

    c = New(Options{Redis: fakePinger{err: errors.New("connection refused")}, Storage: fakePinger{err: errors.New("denied")}})
    if s := c.checkRedis(ctx); s.OK || s.Message != "connection refused" {
        t.Errorf("redis down = %+v", s)
    }
    if s := c.checkStorage(ctx); s.OK || s.Message != "fake: denied" {
        t.Errorf("storage down = %+v", s)
    }
}

func TestCheckPDFCPU(t *testing.T) {
    ctx := context.Background()
    probe := pdftest.Blank(1)
    tests := []struct {
        counter fakeCounter
        ok      bool
    }{
        {fakeCounter{n: 1}, true},
        {fakeCounter{n: 2}, false},
        {fakeCounter{err: errors.New("malformed")}, false},
    }
    for _, tt := range tests {
        c := New(Options{Counter: tt.counter})
        if s := c.checkPDFCPU(ctx, probe); s.OK != tt.ok {
            t.Errorf("counter %+v: status %+v", tt.counter, s)
        }
    }
}

func TestProbeIsReadableByPDFEngines(t *testing.T) {
    c := New(Options{})
    probe := pdftest.Blank(1)
    if s := c.checkPDFCPU(context.Background(), probe); !s.OK {
        t.Errorf("pdfcpu: %+v", s)
    }
    if s := c.checkMuPDF(probe); !s.OK {
        t.Errorf("mupdf: %+v", s)
    }
}

func TestSummaryHealthy(t *testing.T) {
    up := Status{OK: true}
    s := Summary{Redis: Status{Message: notConfigured}, Storage: up, PDFCPU: up, MuPDF: up}
    if !s.Healthy() {
        t.Error("unconfigured redis should not make the summary unhealthy")
    }
    s.Redis = Status{Message: "connection refused"}
    if s.Healthy() {
        t.Error("configured but failing redis should be unhealthy")
    }
}
