package config

import (
	"flag"
	"os"
	"strings"
	"testing"
	"time"
)

// resetFlagSet создаёт новый FlagSet перед каждым вызовом NewConfig,
// чтобы избежать повторной регистрации одних и тех же флагов между тестами.
func resetFlagSet(t *testing.T) {
	t.Helper()
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	// подавляем вывод парсера флагов в тестах
	flag.CommandLine.SetOutput(os.Stderr)
}

func TestNewConfig_DefaultsWhenEnvEmpty(t *testing.T) {
	t.Setenv("DATABASE_URI", "")
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("ENABLE_HTTPS", "")
	t.Setenv("MAX_BODY_MB", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("TABLE_PATH", "")
	t.Setenv("LOGS_PATH", "")
	t.Setenv("CACHE_TTL", "")
	t.Setenv("TOKEN_FILE", "")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.AuthSecret != "dev-secret-key" {
		t.Fatalf("AuthSecret default expected 'dev-secret-key', got %q", cfg.AuthSecret)
	}
	if cfg.MaxBodyMB != 1 {
		t.Fatalf("MaxBodyMB default expected 1, got %d", cfg.MaxBodyMB)
	}
	if cfg.StoreDriver != "fs" || cfg.TablePath != "SALDO_PECAS.xlsx" || cfg.LogsPath != "logs.csv" {
		t.Fatalf("store defaults: driver=%q table=%q logs=%q", cfg.StoreDriver, cfg.TablePath, cfg.LogsPath)
	}
	if cfg.CacheTTL != 2*time.Second {
		t.Fatalf("CacheTTL default expected 2s, got %v", cfg.CacheTTL)
	}
	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("BaseURL default expected 'localhost:8081', got %q", cfg.BaseURL)
	}
	if cfg.ServerURL != "http://localhost:8081" {
		t.Fatalf("ServerURL default expected 'http://localhost:8081', got %q", cfg.ServerURL)
	}
	if cfg.TokenFile == "" {
		t.Fatalf("client defaults must be non-empty: TokenFile=%q", cfg.TokenFile)
	}
}

func TestNewConfig_BaseURLAndHTTPS(t *testing.T) {
	t.Setenv("BASE_URL", "example.com:443")
	t.Setenv("ENABLE_HTTPS", "true")
	t.Setenv("AUTH_SECRET", "top")
	t.Setenv("MAX_BODY_MB", "10")
	t.Setenv("STORE_DRIVER", "github")
	t.Setenv("GITHUB_OWNER", "acme")
	t.Setenv("CACHE_TTL", "500ms")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "example.com:443" {
		t.Fatalf("BaseURL expected 'example.com:443', got %q", cfg.BaseURL)
	}
	if cfg.ServerURL != "https://example.com:443" {
		t.Fatalf("ServerURL expected 'https://example.com:443', got %q", cfg.ServerURL)
	}
	if cfg.AuthSecret != "top" {
		t.Fatalf("AuthSecret expected from env 'top', got %q", cfg.AuthSecret)
	}
	if cfg.MaxBodyMB != 10 {
		t.Fatalf("MaxBodyMB expected 10, got %d", cfg.MaxBodyMB)
	}
	if cfg.StoreDriver != "github" || cfg.GitHubOwner != "acme" {
		t.Fatalf("store settings from env: driver=%q owner=%q", cfg.StoreDriver, cfg.GitHubOwner)
	}
	if cfg.CacheTTL != 500*time.Millisecond {
		t.Fatalf("CacheTTL expected 500ms, got %v", cfg.CacheTTL)
	}
}

func TestNewConfig_InvalidBaseURLFallback(t *testing.T) {
	// Невалидный BASE_URL (со схемой) должен откатиться на localhost:8081
	t.Setenv("BASE_URL", "http://bad:8080")
	t.Setenv("ENABLE_HTTPS", "false")

	resetFlagSet(t)
	cfg := NewConfig()

	if cfg.BaseURL != "localhost:8081" {
		t.Fatalf("invalid BASE_URL must fallback to 'localhost:8081', got %q", cfg.BaseURL)
	}
	if !strings.HasPrefix(cfg.ServerURL, "http://localhost:8081") {
		t.Fatalf("ServerURL must reflect fallback base, got %q", cfg.ServerURL)
	}
}
