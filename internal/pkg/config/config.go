package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, windows, rates), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Payment   PaymentConfig
	Checkout  CheckoutConfig
	Reconcile ReconcileConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type KafkaConfig struct {
	Brokers           []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	NotificationTopic string   `envconfig:"KAFKA_NOTIFICATION_TOPIC" default:"storefront.notifications"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"UTC"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"0"`
}

type JWTConfig struct {
	Secret        string        `envconfig:"JWT_SECRET" required:"true"`
	Duration      time.Duration `envconfig:"JWT_DURATION" default:"24h"`
	GuestDuration time.Duration `envconfig:"JWT_GUEST_DURATION" default:"24h"`
}

type PaymentConfig struct {
	BaseURL    string        `envconfig:"PAYMENT_GATEWAY_URL" required:"true"`
	APIKey     string        `envconfig:"PAYMENT_GATEWAY_API_KEY" required:"true"`
	Timeout    time.Duration `envconfig:"PAYMENT_GATEWAY_TIMEOUT" default:"10s"`
	MaxRetries int           `envconfig:"PAYMENT_GATEWAY_MAX_RETRIES" default:"2"`
}

type CheckoutConfig struct {
	ReservationTTL  time.Duration `envconfig:"RESERVATION_TTL" default:"15m"`
	TaxRateBps      int           `envconfig:"TAX_RATE_BPS" default:"800"`
	FlatShippingCts int64         `envconfig:"FLAT_SHIPPING_CENTS" default:"999"`
	Currency        string        `envconfig:"CHECKOUT_CURRENCY" default:"USD"`
}

type ReconcileConfig struct {
	Interval time.Duration `envconfig:"RECONCILE_INTERVAL" default:"1m"`
	CartTTL  time.Duration `envconfig:"CART_TTL" default:"168h"`
}

type RateLimitConfig struct {
	CheckoutPerMinute int  `envconfig:"RATE_LIMIT_CHECKOUT_PER_MINUTE" default:"5"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func LoadConfig() (Config, error) {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433",
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level:      "error",
			TimeZone:   "UTC",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		JWT: JWTConfig{
			Secret:        "test-secret",
			Duration:      time.Hour,
			GuestDuration: time.Hour,
		},
		Checkout: CheckoutConfig{
			ReservationTTL:  15 * time.Minute,
			TaxRateBps:      800,
			FlatShippingCts: 999,
			Currency:        "USD",
		},
		Reconcile: ReconcileConfig{
			Interval: time.Minute,
			CartTTL:  7 * 24 * time.Hour,
		},
	}
}
