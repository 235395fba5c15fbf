package config

import (
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const envFile = ".env"

type Config struct {
	AppEnv      string `env:"APP_ENV" env-default:"development"`
	Port        string `env:"PORT" env-default:"8080"`
	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`
	CORSOrigins string `env:"CORS_ORIGINS" env-default:"*"`

	JWTSecret  string        `env:"JWT_SECRET" env-required:"true"`
	JWTTTL     time.Duration `env:"JWT_TTL" env-default:"168h"`
	BcryptCost int           `env:"BCRYPT_COST" env-default:"12"`

	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`

	Stripe   StripeConfig
	Payments PaymentConfig
	Email    EmailConfig
}

type StripeConfig struct {
	SecretKey     string `env:"STRIPE_SECRET_KEY"`
	WebhookSecret string `env:"STRIPE_WEBHOOK_SECRET"`
	SuccessURL    string `env:"CHECKOUT_SUCCESS_URL" env-default:"http://localhost:5173/student/dashboard?payment=success"`
	CancelURL     string `env:"CHECKOUT_CANCEL_URL" env-default:"http://localhost:5173/student/dashboard?payment=cancelled"`
}

type PaymentConfig struct {
	Currency       string        `env:"CURRENCY" env-default:"usd"`
	PendingTTL     time.Duration `env:"PAYMENT_PENDING_TTL" env-default:"24h"`
	ExpirySchedule string        `env:"PAYMENT_EXPIRY_SCHEDULE" env-default:"*/5 * * * *"`
}

type EmailConfig struct {
	BrevoAPIKey string `env:"BREVO_API_KEY"`
	Sender      string `env:"EMAIL_SENDER"`
	SenderName  string `env:"EMAIL_SENDER_NAME" env-default:"Tutor Marketplace"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, errors.Wrap(err, "read environment")
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
