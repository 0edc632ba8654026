package common

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/viper"
)

type Config struct {
	Viper *viper.Viper
}

type RedisConfig struct {
	Addr     string
	Password string
	Prefix   string
}

type OtpConfig struct {
	TTL         time.Duration
	MaxAttempts int
	SendLimit   int
	SendWindow  time.Duration
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type AmqpConfig struct {
	URL   string
	Queue string
}

type SmtpConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// NewViper loads .env from the working directory (or its parent) and lets
// environment variables override it. A missing .env is not an error.
func NewViper() *Config {
	config := viper.New()
	config.SetConfigFile(".env")
	config.SetConfigType("env")
	config.AddConfigPath("../")
	config.AutomaticEnv()

	log.Trace("Checking file .env ....")
	if err := config.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			panic("failed read config: " + err.Error())
		}
		log.Info("No .env file found, using environment only")
	}
	return NewConfig(config)
}

// NewConfig applies defaults to an already populated viper instance.
func NewConfig(config *viper.Viper) *Config {
	config.SetDefault("APP_NAME", "messenger-api")
	config.SetDefault("APP_PORT", "7720")
	config.SetDefault("CLIENT_URL", "http://localhost:3000")
	config.SetDefault("LOG_LEVEL", "info")
	config.SetDefault("LOG_DIR", "logs")
	config.SetDefault("DB_PORT", "5432")
	config.SetDefault("DB_TIMEZONE", "UTC")
	config.SetDefault("JWT_TTL", "72h")
	config.SetDefault("JWT_ISSUER", "messenger-api")
	config.SetDefault("REDIS_ADDR", "localhost:6379")
	config.SetDefault("REDIS_PREFIX", "messenger")
	config.SetDefault("OTP_TTL", "5m")
	config.SetDefault("OTP_MAX_ATTEMPTS", 5)
	config.SetDefault("OTP_SEND_LIMIT", 5)
	config.SetDefault("OTP_SEND_WINDOW", "10m")
	config.SetDefault("MAIL_QUEUE", "mail.otp")
	config.SetDefault("SMTP_PORT", 587)
	config.SetDefault("MINIO_BUCKET", "messenger")
	return &Config{Viper: config}
}

func (c *Config) GetAppConfig() (appName string) {
	return c.Viper.GetString("APP_NAME")
}

func (c *Config) GetServerConfig() (port string, clientURL string) {
	return c.Viper.GetString("APP_PORT"), c.Viper.GetString("CLIENT_URL")
}

func (c *Config) GetLogConfig() (level string, dir string) {
	return c.Viper.GetString("LOG_LEVEL"), c.Viper.GetString("LOG_DIR")
}

func (c *Config) GetDatabaseConfig() (dbHost, dbUser, dbPassword, dbName, dbPort, timezone string) {
	dbHost = c.Viper.GetString("DB_HOSTNAME")
	dbUser = c.Viper.GetString("DB_USER")
	dbPassword = c.Viper.GetString("DB_PASSWORD")
	dbName = c.Viper.GetString("DB_NAME")
	dbPort = c.Viper.GetString("DB_PORT")
	timezone = c.Viper.GetString("DB_TIMEZONE")

	return dbHost, dbUser, dbPassword, dbName, dbPort, timezone
}

func (c *Config) GetJwtConfig() []byte {
	jwtSecret := c.Viper.GetString("JWT_SECRET")
	return []byte(jwtSecret)
}

func (c *Config) GetJwtClaimsConfig() (issuer string, ttl time.Duration) {
	return c.Viper.GetString("JWT_ISSUER"), c.Viper.GetDuration("JWT_TTL")
}

func (c *Config) GetRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     strings.TrimSpace(c.Viper.GetString("REDIS_ADDR")),
		Password: c.Viper.GetString("REDIS_PASSWORD"),
		Prefix:   c.Viper.GetString("REDIS_PREFIX"),
	}
}

func (c *Config) GetOtpConfig() OtpConfig {
	return OtpConfig{
		TTL:         c.Viper.GetDuration("OTP_TTL"),
		MaxAttempts: c.Viper.GetInt("OTP_MAX_ATTEMPTS"),
		SendLimit:   c.Viper.GetInt("OTP_SEND_LIMIT"),
		SendWindow:  c.Viper.GetDuration("OTP_SEND_WINDOW"),
	}
}

func (c *Config) GetMinioConfig() MinioConfig {
	return MinioConfig{
		Endpoint:  strings.TrimSpace(c.Viper.GetString("MINIO_ENDPOINT")),
		AccessKey: c.Viper.GetString("MINIO_ACCESS_KEY"),
		SecretKey: c.Viper.GetString("MINIO_SECRET_KEY"),
		Bucket:    c.Viper.GetString("MINIO_BUCKET"),
		UseSSL:    c.Viper.GetBool("MINIO_USE_SSL"),
		PublicURL: strings.TrimRight(c.Viper.GetString("MINIO_PUBLIC_URL"), "/"),
	}
}

func (c *Config) GetAmqpConfig() AmqpConfig {
	return AmqpConfig{
		URL:   strings.TrimSpace(c.Viper.GetString("AMQP_URL")),
		Queue: c.Viper.GetString("MAIL_QUEUE"),
	}
}

func (c *Config) GetSmtpConfig() SmtpConfig {
	return SmtpConfig{
		Host:     c.Viper.GetString("SMTP_HOST"),
		Port:     c.Viper.GetInt("SMTP_PORT"),
		User:     c.Viper.GetString("SMTP_USER"),
		Password: c.Viper.GetString("SMTP_PASSWORD"),
		From:     c.Viper.GetString("SMTP_FROM"),
	}
}

func (c *Config) GetOAuthClientSecret() string {
	return c.Viper.GetString("OAUTH_CLIENT_SECRET")
}
