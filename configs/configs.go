package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Conf struct {
	AppEnv            string        `mapstructure:"APP_ENV"`
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	RedisHost         string        `mapstructure:"REDIS_HOST"`
	RedisPort         string        `mapstructure:"REDIS_PORT"`
	CacheTTL          time.Duration `mapstructure:"CACHE_TTL"`
	AMQPURL           string        `mapstructure:"AMQP_URL"`
	WebServerPort     string        `mapstructure:"WEB_SERVER_PORT"`
	OTELCollectorAddr string        `mapstructure:"OTEL_COLLECTOR_ADDR"`
	RateLimitRPS      int           `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst    int           `mapstructure:"RATE_LIMIT_BURST"`
	CORSOrigins       string        `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"APP_ENV":             "development",
	"DB_DRIVER":           "postgres",
	"DB_HOST":             "localhost",
	"DB_PORT":             "5432",
	"DB_USER":             "lifthub",
	"DB_PASSWORD":         "lifthub",
	"DB_NAME":             "lifthub",
	"REDIS_HOST":          "",
	"REDIS_PORT":          "6379",
	"CACHE_TTL":           "5m",
	"AMQP_URL":            "",
	"WEB_SERVER_PORT":     "3001",
	"OTEL_COLLECTOR_ADDR": "",
	"RATE_LIMIT_RPS":      20,
	"RATE_LIMIT_BURST":    40,
	"CORS_ORIGINS":        "*",
}

// LoadConfig reads path/.env, overlaid by environment variables. A missing
// .env file is not an error.
func LoadConfig(path string) (*Conf, error) {
	var cfg *Conf

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	err = v.Unmarshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func (c *Conf) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Conf) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// RedisAddr is empty when Redis is not configured.
func (c *Conf) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}

func (c *Conf) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
