package config

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
    Level        string
    Pretty       bool
    File         string
    MaxSizeMB    int
    MaxBackups   int
    MaxAgeDays   int
    Compress     bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
    Send          bool
    APIKey        string
    OrgID         string
    Dataset       string
    FlushInterval time.Duration
}

// ServerConfig defines the HTTP surface of the upload server.
type ServerConfig struct {
    Port               string
    UploadDir          string
    PublicDir          string
    MaxMultipartMemory int64
}

// PricingConfig holds per-page unit prices in whole currency units.
type PricingConfig struct {
    BW    int64
    Color int64
}

// IntakeConfig bounds what the client accepts before estimation.
type IntakeConfig struct {
    MaxFileSize int64
}

// StorageConfig selects and configures the remote storage backend.
type StorageConfig struct {
    Backend         string // "drive"|"s3"|"gcs"|"local"
    RootFolderID    string
    CredentialsFile string
    S3Bucket        string
    S3Region        string
    S3AccessKey     string
    S3SecretKey     string
    PresignTTL      time.Duration
    GCSBucket       string
    LocalDir        string
    LocalBaseURL    string
}

// RateLimitConfig controls the optional Redis-backed upload limiter.
// TrustProxy keys clients on X-Forwarded-For instead of the peer address.
type RateLimitConfig struct {
    RedisURL   string
    Limit      int
    Window     time.Duration
    TrustProxy bool
}

// ClientConfig is used by printctl to reach the upload server.
type ClientConfig struct {
    Endpoint string
    Timeout  time.Duration
}

// Config is the top-level configuration.
type Config struct {
    Logging   LoggingConfig
    Axiom     AxiomConfig
    Server    ServerConfig
    Pricing   PricingConfig
    Intake    IntakeConfig
    Storage   StorageConfig
    RateLimit RateLimitConfig
    Client    ClientConfig
}

// Load reads an optional .env file into the process environment and then
// builds the configuration with FromEnv. Variables already set win.
func Load(files ...string) Config {
    if len(files) == 0 { files = []string{".env"} }
    for _, f := range files {
        if _, err := os.Stat(f); err == nil {
            _ = godotenv.Load(f)
        }
    }
    return FromEnv()
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
    cfg := Config{}

    // Logging defaults
    cfg.Logging = LoggingConfig{
        Level:      getEnv("LOG_LEVEL", "info"),
        Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
        File:       getEnv("LOG_FILE", "logs/printdesk.log"),
        MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "100"), 100),
        MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "10"), 10),
        MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
        Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
    }

    // Axiom defaults
    baseDataset := getEnv("AXIOM_DATASET", "dev")
    cfg.Axiom = AxiomConfig{
        Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
        APIKey:        getEnv("AXIOM_API_KEY", ""),
        OrgID:         getEnv("AXIOM_ORG_ID", ""),
        Dataset:       baseDataset + "_printdesk",
        FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
    }

    cfg.Server = ServerConfig{
        Port:               getEnv("PORT", "3000"),
        UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
        PublicDir:          getEnv("PUBLIC_DIR", "public"),
        MaxMultipartMemory: int64(parseInt(getEnv("MAX_MULTIPART_MEMORY_MB", "32"), 32)) << 20,
    }

    cfg.Pricing = PricingConfig{
        BW:    int64(parseInt(getEnv("PRICE_BW", "2"), 2)),
        Color: int64(parseInt(getEnv("PRICE_COLOR", "10"), 10)),
    }

    cfg.Intake = IntakeConfig{
        MaxFileSize: int64(parseInt(getEnv("MAX_FILE_SIZE_MB", "10"), 10)) << 20,
    }

    // GOOGLE_DRIVE_FOLDER_ID is kept for deployments that predate ROOT_FOLDER_ID.
    root := getEnv("ROOT_FOLDER_ID", os.Getenv("GOOGLE_DRIVE_FOLDER_ID"))
    cfg.Storage = StorageConfig{
        Backend:         strings.ToLower(getEnv("STORAGE_BACKEND", "local")),
        RootFolderID:    root,
        CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
        S3Bucket:        getEnv("AWS_S3_BUCKET", ""),
        S3Region:        getEnv("AWS_REGION", ""),
        S3AccessKey:     getEnv("AWS_ACCESS_KEY_ID", ""),
        S3SecretKey:     getEnv("AWS_SECRET_ACCESS_KEY", ""),
        PresignTTL:      parseDuration(getEnv("S3_PRESIGN_TTL", "168h"), 7*24*time.Hour),
        GCSBucket:       getEnv("GCS_BUCKET", ""),
        LocalDir:        getEnv("LOCAL_STORAGE_DIR", "storage"),
        LocalBaseURL:    getEnv("LOCAL_BASE_URL", ""),
    }

    cfg.RateLimit = RateLimitConfig{
        RedisURL:   getEnv("REDIS_URL", ""),
        Limit:      parseInt(getEnv("UPLOAD_RATE_LIMIT", "20"), 20),
        Window:     parseDuration(getEnv("UPLOAD_RATE_WINDOW", "1m"), time.Minute),
        TrustProxy: parseBool(getEnv("TRUST_PROXY", "false")),
    }

    cfg.Client = ClientConfig{
        Endpoint: getEnv("PRINTDESK_ENDPOINT", "http://localhost:3000/api/upload"),
        Timeout:  parseDuration(getEnv("CLIENT_TIMEOUT", "2m"), 2*time.Minute),
    }

    return cfg
}

// Helpers
func getEnv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func parseInt(s string, def int) int {
    if s == "" { return def }
    if n, err := strconv.Atoi(s); err == nil { return n }
    return def
}

func parseBool(s string) bool {
    v := strings.ToLower(strings.TrimSpace(s))
    return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
    if s == "" { return def }
    if d, err := time.ParseDuration(s); err == nil { return d }
    return def
}

func devDefaultPretty() string {
    env := strings.ToLower(os.Getenv("ENVIRONMENT"))
    if env == "dev" || env == "development" || env == "local" { return "true" }
    return "false"
}
