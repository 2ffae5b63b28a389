package config

import (
	"flag"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server-side settings
	DatabaseDSN     string `env:"DATABASE_URI"`
	AuthSecret      string `env:"AUTH_SECRET"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
	MaxBodyMB       int    `env:"MAX_BODY_MB"`

	// Remote table store
	StoreDriver    string        `env:"STORE_DRIVER"` // github | s3 | fs | memory
	TablePath      string        `env:"TABLE_PATH"`
	LogsPath       string        `env:"LOGS_PATH"`
	MasterPassword string        `env:"MASTER_PASSWORD"` // пустой — таблица хранится без шифрования
	CacheTTL       time.Duration `env:"CACHE_TTL" envDefault:"2s"`
	StoreRetries   uint64        `env:"STORE_RETRIES" envDefault:"3"`

	GitHubAPIURL string `env:"GITHUB_API_URL"`
	GitHubOwner  string `env:"GITHUB_OWNER"`
	GitHubRepo   string `env:"GITHUB_REPO"`
	GitHubBranch string `env:"GITHUB_BRANCH"`
	GitHubToken  string `env:"GITHUB_TOKEN"`

	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
	S3PathStyle       bool   `env:"S3_PATH_STYLE"`

	FSRoot string `env:"STORE_FS_ROOT"`

	// Shared settings
	BaseURL     string `env:"BASE_URL"`
	EnableHTTPS bool   `env:"ENABLE_HTTPS"`

	// Client-side settings
	ServerURL string `env:"-"`
	TokenFile string `env:"TOKEN_FILE"`
	Version   bool   `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	// Server flags
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД резервного журнала")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.StringVar(&cfg.CredentialsFile, "credentials", cfg.CredentialsFile, "YAML с пользователями и их UF")
	flag.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "хранилище таблицы: github, s3, fs, memory")
	flag.StringVar(&cfg.TablePath, "table", cfg.TablePath, "путь таблицы в хранилище")
	flag.StringVar(&cfg.LogsPath, "logs", cfg.LogsPath, "путь журнала в хранилище")
	flag.StringVar(&cfg.FSRoot, "fs-root", cfg.FSRoot, "каталог для хранилища fs")
	flag.DurationVar(&cfg.CacheTTL, "cache-ttl", cfg.CacheTTL, "время жизни кэша таблицы")
	// Shared/client flags
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "base URL of the PartsKeeper server (host:port)")
	flag.BoolVar(&cfg.EnableHTTPS, "https", cfg.EnableHTTPS, "enable HTTPS (client: prefer https scheme for BaseURL)")
	// Client flags
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = "credentials.yaml"
	}
	if cfg.MaxBodyMB <= 0 {
		cfg.MaxBodyMB = 1
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "fs"
	}
	if cfg.TablePath == "" {
		cfg.TablePath = "SALDO_PECAS.xlsx"
	}
	if cfg.LogsPath == "" {
		cfg.LogsPath = "logs.csv"
	}
	if cfg.FSRoot == "" {
		cfg.FSRoot = "data"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8081"
	}

	if cfg.EnableHTTPS {
		cfg.ServerURL = "https://" + cfg.BaseURL
	} else {
		cfg.ServerURL = "http://" + cfg.BaseURL
	}

	// Fill client defaults if empty
	if cfg.TokenFile == "" {
		home, _ := os.UserHomeDir()
		cfg.TokenFile = filepath.Join(home, ".pk_token")
	}

	return cfg
}
