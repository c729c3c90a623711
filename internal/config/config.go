package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Providers struct {
		Kiwify struct {
			WebhookSecret string `yaml:"webhook_secret"`
			CheckoutURL   string `yaml:"checkout_url"`
		} `yaml:"kiwify"`
		MercadoPago struct {
			AccessToken    string  `yaml:"access_token"`
			WebhookSecret  string  `yaml:"webhook_secret"`
			PixAmount      float64 `yaml:"pix_amount"`
			PixDescription string  `yaml:"pix_description"`
		} `yaml:"mercadopago"`
	} `yaml:"providers"`
	Reconciler struct {
		AllowFallback bool `yaml:"allow_fallback"`
		AllowUnsigned bool `yaml:"allow_unsigned"`
	} `yaml:"reconciler"`
}

// Load reads YAML config from path, then lets environment variables
// override the secrets so deployments never have to write them to disk.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("KIWIFY_WEBHOOK_SECRET"); v != "" {
		cfg.Providers.Kiwify.WebhookSecret = v
	}
	if v := os.Getenv("KIWIFY_CHECKOUT_URL"); v != "" {
		cfg.Providers.Kiwify.CheckoutURL = v
	}
	if v := os.Getenv("MERCADO_PAGO_ACCESS_TOKEN"); v != "" {
		cfg.Providers.MercadoPago.AccessToken = v
	}
	if v := os.Getenv("MERCADO_PAGO_WEBHOOK_SECRET"); v != "" {
		cfg.Providers.MercadoPago.WebhookSecret = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
