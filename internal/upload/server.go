// Package upload is the HTTP side of the print desk: it receives a
// student's files, stores them in a per-student folder and answers
// estimate, quote and preview requests for the web client.
package upload

import (
    "context"
    "encoding/json"
    "net"
    "net/http"
    "os"
    "strings"

    "github.com/rs/zerolog"

    "github.com/local/printdesk/internal/logger"
    "github.com/local/printdesk/internal/metrics"
    "github.com/local/printdesk/internal/order"
    "github.com/local/printdesk/internal/statuscheck"
    "github.com/local/printdesk/internal/storage"
)

// Limiter decides whether a client may upload again.
type Limiter interface {
    Allow(ctx context.Context, client string) (bool, error)
}

// StatusSource reports the health of upload dependencies.
type StatusSource interface {
    Summary(ctx context.Context) statuscheck.Summary
}

type Dependencies struct {
    Storage      *storage.Uploader
    RootFolderID string
    Limiter      Limiter
    // TrustProxy reads the client address from X-Forwarded-For. Only set
    // it behind a proxy that overwrites the header.
    TrustProxy   bool
    Estimator    *order.Estimator
    Pricing      *order.Pricing
    Status       StatusSource
    UploadDir    string
    PublicDir    string
    MaxMemory    int64
}

type Server struct {
    deps Dependencies
    log  zerolog.Logger
}

func New(deps Dependencies) *Server {
    if deps.Estimator == nil { deps.Estimator = order.NewEstimator(nil) }
    if deps.Pricing == nil { p := order.DefaultPricing; deps.Pricing = &p }
    if deps.UploadDir == "" { deps.UploadDir = "uploads" }
    if deps.MaxMemory <= 0 { deps.MaxMemory = 32 << 20 }
    return &Server{deps: deps, log: logger.Component("upload")}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
    mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request){ w.WriteHeader(http.StatusOK); _,_ = w.Write([]byte("ok")) })
    mux.HandleFunc("/api/upload", s.handleUpload)
    mux.HandleFunc("/api/estimate", s.handleEstimate)
    mux.HandleFunc("/api/quote", s.handleQuote)
    mux.HandleFunc("/api/preview", s.handlePreview)
    mux.HandleFunc("/api/status", s.handleStatus)
    mux.Handle("/metrics", metrics.Handler())
    if s.deps.PublicDir != "" {
        if st, err := os.Stat(s.deps.PublicDir); err == nil && st.IsDir() {
            mux.Handle("/", http.FileServer(http.Dir(s.deps.PublicDir)))
        } else {
            s.log.Debug().Str("dir", s.deps.PublicDir).Msg("public dir not found, static files disabled")
        }
    }
}

// Handler returns the full route set wrapped with CORS.
func (s *Server) Handler() http.Handler {
    mux := http.NewServeMux()
    s.RegisterRoutes(mux)
    return withCORS(mux)
}

// withCORS allows any origin, like the browser client expects.
func withCORS(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        h := w.Header()
        h.Set("Access-Control-Allow-Origin", "*")
        h.Set("Access-Control-Allow-Methods", "GET,HEAD,PUT,PATCH,POST,DELETE")
        h.Set("Access-Control-Allow-Headers", "Content-Type")
        if r.Method == http.MethodOptions {
            w.WriteHeader(http.StatusNoContent)
            return
        }
        next.ServeHTTP(w, r)
    })
}

func writeJSON(w http.ResponseWriter, code int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
    writeJSON(w, code, map[string]string{"error": msg})
}

// clientIP is the rate-limit key for r.
func (s *Server) clientIP(r *http.Request) string {
    if s.deps.TrustProxy {
        if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
            return strings.TrimSpace(strings.Split(fwd, ",")[0])
        }
    }
    host, _, err := net.SplitHostPort(r.RemoteAddr)
    if err != nil { return r.RemoteAddr }
    return host
}
