package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
redis:
  addr: localhost:6379
  ttl: 45m
postgres:
  url: postgres://localhost/iq
quiz:
  ttl: 1h
providers:
  kiwify:
    webhook_secret: filesecret
    checkout_url: https://pay.kiwify.com.br/abc123
  mercadopago:
    pix_amount: 19.9
    pix_description: Relatório completo
reconciler:
  allow_fallback: true
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Providers.Kiwify.WebhookSecret != "filesecret" {
		t.Fatalf("expected secret from file, got %q", cfg.Providers.Kiwify.WebhookSecret)
	}
	if cfg.Providers.MercadoPago.PixAmount != 19.9 {
		t.Fatalf("expected pix amount, got %v", cfg.Providers.MercadoPago.PixAmount)
	}
	if !cfg.Reconciler.AllowFallback || cfg.Reconciler.AllowUnsigned {
		t.Fatalf("unexpected reconciler flags %+v", cfg.Reconciler)
	}
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
providers:
  kiwify:
    webhook_secret: filesecret
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KIWIFY_WEBHOOK_SECRET", "envsecret")
	t.Setenv("MERCADO_PAGO_ACCESS_TOKEN", "envtoken")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Providers.Kiwify.WebhookSecret != "envsecret" {
		t.Fatalf("expected env to win, got %q", cfg.Providers.Kiwify.WebhookSecret)
	}
	if cfg.Providers.MercadoPago.AccessToken != "envtoken" {
		t.Fatalf("expected env token, got %q", cfg.Providers.MercadoPago.AccessToken)
	}
}

func TestTTLDuration(t *testing.T) {
	if d := TTLDuration("", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := TTLDuration("30s", time.Minute); d != 30*time.Second {
		t.Fatalf("expected parsed value, got %v", d)
	}
	if d := TTLDuration("bogus", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback on parse error, got %v", d)
	}
}
