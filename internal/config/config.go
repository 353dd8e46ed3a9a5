package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	ServiceID  string `env:"SERVICE_ID"`

	// Public base URL used for the gateway callback and email download links.
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	MongoURI string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB  string `env:"MONGO_DB" envDefault:"akalaw"`

	PaystackSecretKey string `env:"PAYSTACK_SECRET_KEY"`
	PaystackPublicKey string `env:"PAYSTACK_PUBLIC_KEY"`
	PaystackBaseURL   string `env:"PAYSTACK_BASE_URL" envDefault:"https://api.paystack.co"`

	ResendAPIKey  string `env:"RESEND_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"info@akalaw.co.za"`
	EmailFromName string `env:"EMAIL_FROM_NAME" envDefault:"AKA Law"`
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"websales@akalaw.co.za"`
	EmailReplyTo  string `env:"EMAIL_REPLY_TO" envDefault:"info@akalaw.co.za"`

	// Directory holding the pre-built document archives.
	DocumentsDir string `env:"DOCUMENTS_DIR" envDefault:"public/documents"`

	// Optional monitoring topic; disabled when no brokers are set.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"payment-events"`

	// Optional service registration; skipped when empty.
	ConsulAddr string `env:"CONSUL_ADDR"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ServiceID == "" {
		cfg.ServiceID = uuid.New().String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.PaystackSecretKey == "" {
		return fmt.Errorf("PAYSTACK_SECRET_KEY is required")
	}
	if c.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is required")
	}
	if c.MongoURI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	return nil
}

// RedactedSecret returns a loggable form of a credential: its first few
// characters only. Full secrets never reach logs.
func RedactedSecret(secret string) string {
	if secret == "" {
		return "NOT SET"
	}
	if len(secret) <= 8 {
		return "***"
	}
	return secret[:8] + "..."
}
