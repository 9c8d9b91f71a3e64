package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/yungbote/certchain-backend/internal/observability"
)

const (
	ContentStorePinata = "pinata"
	ContentStoreGCS    = "gcs"

	CompositorChromium = "chromium"
	CompositorRaster   = "raster"
	CompositorDisabled = "disabled"
)

type Config struct {
	Port        string   `envconfig:"PORT" default:"8080"`
	LogMode     string   `envconfig:"LOG_MODE" default:"development"`
	LogLevel    string   `envconfig:"LOG_LEVEL"`
	LogRedact   bool     `envconfig:"LOG_REDACTION_ENABLED" default:"true"`
	LogHashSalt string   `envconfig:"LOG_HASH_SALT"`
	CORSOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`

	DatabaseDriver string `envconfig:"DATABASE_DRIVER" default:"postgres"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	SQLitePath     string `envconfig:"SQLITE_PATH"`
	PostgresHost   string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort   string `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser   string `envconfig:"POSTGRES_USER"`
	PostgresPass   string `envconfig:"POSTGRES_PASSWORD"`
	PostgresName   string `envconfig:"POSTGRES_NAME"`
	PostgresSSL    string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	ContentStore    string `envconfig:"CONTENT_STORE" default:"pinata"`
	PinataAPIKey    string `envconfig:"PINATA_API_KEY"`
	PinataAPISecret string `envconfig:"PINATA_API_SECRET"`
	PinataJWT       string `envconfig:"PINATA_JWT"`
	PinataAPIURL    string `envconfig:"PINATA_API_URL" default:"https://api.pinata.cloud"`

	ObjectStorageMode   string `envconfig:"OBJECT_STORAGE_MODE"`
	StorageEmulatorHost string `envconfig:"STORAGE_EMULATOR_HOST"`
	GCSBucket           string `envconfig:"CERTIFICATE_GCS_BUCKET_NAME"`
	GCSPrefix           string `envconfig:"CERTIFICATE_GCS_PREFIX" default:"certificates"`
	GCSCredentials      string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`

	RPCURL          string `envconfig:"RPC_URL"`
	PrivateKey      string `envconfig:"PRIVATE_KEY"`
	ContractAddress string `envconfig:"CONTRACT_ADDRESS"`
	DefaultMintTo   string `envconfig:"DEFAULT_MINT_TO"`
	ExplorerToken   string `envconfig:"BLOCK_EXPLORER_TOKEN_BASE"`
	ExplorerTx      string `envconfig:"BLOCK_EXPLORER_TX_BASE"`

	CompositorMode string `envconfig:"COMPOSITOR_MODE" default:"chromium"`
	ChromePath     string `envconfig:"CHROME_PATH"`
	RasterFontPath string `envconfig:"CERTIFICATE_FONT_PATH"`
	TemplateYAML   string `envconfig:"CERTIFICATE_TEMPLATE_YAML"`

	RenderTimeout       time.Duration `envconfig:"RENDER_TIMEOUT" default:"60s"`
	StoreTimeout        time.Duration `envconfig:"STORE_TIMEOUT" default:"30s"`
	ChainSubmitTimeout  time.Duration `envconfig:"CHAIN_SUBMIT_TIMEOUT" default:"30s"`
	ChainConfirmTimeout time.Duration `envconfig:"CHAIN_CONFIRM_TIMEOUT" default:"2m"`
	IssuanceLockTTL     time.Duration `envconfig:"ISSUANCE_LOCK_TTL" default:"5m"`

	RedisAddr       string `envconfig:"REDIS_ADDR"`
	RedisLockPrefix string `envconfig:"REDIS_LOCK_PREFIX" default:"certchain:lock:"`

	Otel observability.OtelConfig
}

// LoadConfig reads the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.ContentStore = strings.ToLower(strings.TrimSpace(cfg.ContentStore))
	cfg.CompositorMode = strings.ToLower(strings.TrimSpace(cfg.CompositorMode))
	cfg.DatabaseDriver = strings.ToLower(strings.TrimSpace(cfg.DatabaseDriver))
	return cfg, nil
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DatabaseDriver == "sqlite" {
		return strings.TrimSpace(c.SQLitePath)
	}
	if dsn := strings.TrimSpace(c.DatabaseURL); dsn != "" {
		return dsn
	}
	if c.PostgresUser == "" || c.PostgresName == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresName, c.PostgresSSL)
}
