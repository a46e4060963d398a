// config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const AppEnvProduction = "production"

type Config struct {
	App        AppConfig
	Mongo      MongoConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Mail       MailConfig
	Razorpay   RazorpayConfig
	Rabbit     RabbitConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Admin      AdminConfig
}

type AppConfig struct {
	Env         string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"3000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
	FrontendURL string `envconfig:"FRONTEND_URL" default:"http://localhost:5173"`
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProduction)
}

// AllowedOrigins splits CORS_ORIGINS on commas, dropping blanks.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(a.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

type MongoConfig struct {
	URI     string        `envconfig:"MONGO_URL" required:"true"`
	DBName  string        `envconfig:"MONGO_DB_NAME" default:"farmerfriend"`
	Timeout time.Duration `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10s"`
}

type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
}

type CloudinaryConfig struct {
	CloudName string `envconfig:"CLOUDINARY_NAME"`
	APIKey    string `envconfig:"CLOUDINARY_APIKEY"`
	APISecret string `envconfig:"CLOUDINARY_SECRET"`
	Folder    string `envconfig:"CLOUDINARY_FOLDER" default:"farmerfriend/products"`
}

func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type MailConfig struct {
	Service    string `envconfig:"EMAIL_SERVICE"`
	Host       string `envconfig:"EMAIL_HOST"`
	Port       int    `envconfig:"EMAIL_PORT" default:"587"`
	Secure     bool   `envconfig:"EMAIL_SECURE" default:"false"`
	User       string `envconfig:"EMAIL_USER"`
	Password   string `envconfig:"EMAIL_PASSWORD"`
	OwnerEmail string `envconfig:"OWNER_EMAIL"`
}

// SMTPHost resolves the well-known gmail service name to its submission host.
func (m MailConfig) SMTPHost() string {
	if strings.EqualFold(m.Service, "gmail") {
		return "smtp.gmail.com"
	}
	return m.Host
}

// Owner is the contact-form recipient.
func (m MailConfig) Owner() string {
	if m.OwnerEmail != "" {
		return m.OwnerEmail
	}
	return m.User
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"RAZORPAY_KEY_SECRET"`
}

type RabbitConfig struct {
	URL      string `envconfig:"RABBIT_URL"`
	Exchange string `envconfig:"NOTIFY_EXCHANGE" default:"farmerfriend_notifications"`
	Queue    string `envconfig:"NOTIFY_QUEUE" default:"farmerfriend_email"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"AUTH_RATE_LIMIT_WINDOW" default:"1m"`
	Max    int           `envconfig:"AUTH_RATE_LIMIT_MAX" default:"10"`
}

type AdminConfig struct {
	Email    string `envconfig:"ADMIN_EMAIL"`
	Password string `envconfig:"ADMIN_PASSWORD"`
	Name     string `envconfig:"ADMIN_NAME" default:"Administrator"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}
