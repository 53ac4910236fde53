package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env          string `env:"ENV" env-required:"true"`
	LogLevel     string `env:"LOG_LEVEL" env-default:"info" env-description:"logging level, debug, info, etc."`
	HttpServer   HttpServer
	Database     Database
	Limiter      Limiter
	Auth         AuthConfig
	Registration RegistrationConfig
	Incentives   IncentiveConfig
	SMTP         SMTPConfig
	Email        EmailConfig
	Cache        Cache
	Queue        QueueConfig
}

type HttpServer struct {
	Port              string        `env:"HTTP_PORT" env-default:"8080"`
	Timeout           time.Duration `env:"HTTP_TIMEOUT" env-default:"4s"`
	ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"2s"`
	IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	MaxHeaderBytes    int           `env:"HTTP_MAX_HEADER_BYTES" env-default:"16384"`
	SwaggerEnabled    bool          `env:"HTTP_SWAGGER_ENABLED" env-default:"false"`
	MetricsEnabled    bool          `env:"HTTP_METRICS_ENABLED" env-default:"true"`
	AllowedOrigins    []string      `env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000" env-separator:","`
	// PublicURL is used to build links sent by email, e.g. password reset.
	PublicURL string `env:"HTTP_PUBLIC_URL" env-default:"http://localhost:3000"`
}

type Database struct {
	Net                string        `env:"DB_NET" env-default:"tcp"`
	Server             string        `env:"DB_SERVER" env-required:"true"`
	DBName             string        `env:"DB_NAME" env-required:"true"`
	User               string        `env:"DB_USER" env-required:"true"`
	Password           string        `env:"DB_PASSWORD" env-required:"true"`
	TimeZone           string        `env:"DB_TIMEZONE"`
	Timeout            time.Duration `env:"DB_TIMEOUT" env-default:"2s"`
	MaxIdleConnections int           `env:"DB_MAX_IDLE_CONNECTIONS" env-default:"40"`
	MaxOpenConnections int           `env:"DB_MAX_OPEN_CONNECTIONS" env-default:"40"`
	ConnMaxLifetime    time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

type Limiter struct {
	RPS   int           `env:"LIMITER_RPS" env-default:"10"`
	Burst int           `env:"LIMITER_BURST" env-default:"20"`
	TTL   time.Duration `env:"LIMITER_TTL" env-default:"10m"`
}

type AuthConfig struct {
	JWT                    JWTConfig
	BcryptCost             int           `env:"AUTH_BCRYPT_COST" env-default:"10"`
	VerificationCodeLength int           `env:"AUTH_VERIFICATION_CODE_LENGTH" env-default:"6"`
	MaxLoginAttempts       int           `env:"AUTH_MAX_LOGIN_ATTEMPTS" env-default:"5"`
	LockDuration           time.Duration `env:"AUTH_LOCK_DURATION" env-default:"15m"`
	PasswordResetTTL       time.Duration `env:"AUTH_PASSWORD_RESET_TTL" env-default:"10m"`
	// AdminEmails are promoted to the admin role when they complete registration.
	AdminEmails []string `env:"AUTH_ADMIN_EMAILS" env-separator:","`
}

type JWTConfig struct {
	AccessTokenTTL  time.Duration `env:"JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	RefreshTokenTTL time.Duration `env:"JWT_REFRESH_TOKEN_TTL" env-default:"240h"`
	SigningKey      string        `env:"JWT_SIGNING_KEY" env-required:"true"`
}

type RegistrationConfig struct {
	// PendingTTL bounds both the scheduled sweep and the lazy check on OTP confirmation.
	PendingTTL   time.Duration `env:"REGISTRATION_PENDING_TTL" env-default:"90s"`
	PendingStore string        `env:"REGISTRATION_PENDING_STORE" env-default:"redis" env-description:"one of memory/redis"`
	SweepPeriod  time.Duration `env:"REGISTRATION_SWEEP_PERIOD" env-default:"30s"`
}

type IncentiveConfig struct {
	DirectPercent float64 `env:"INCENTIVE_DIRECT_PERCENT" env-default:"10"`
	Stage2Percent float64 `env:"INCENTIVE_STAGE2_PERCENT" env-default:"5"`
	Stage3Percent float64 `env:"INCENTIVE_STAGE3_PERCENT" env-default:"2.5"`
}

type SMTPConfig struct {
	Host string `env:"SMTP_HOST" env-required:"true"`
	Port int    `env:"SMTP_PORT" env-required:"true"`
	From string `env:"SMTP_FROM" env-required:"true"`
	Pass string `env:"SMTP_PASS" env-required:"true"`
}

type EmailConfig struct {
	Enabled   bool `env:"EMAIL_ENABLED" env-default:"false"`
	Templates EmailTemplates
	FontPath  string `env:"EMAIL_PDF_FONT_PATH" env-default:"./fonts/DejaVuSans.ttf"`
}

type EmailTemplates struct {
	Verification  string `env:"EMAIL_TEMPLATE_VERIFICATION" env-default:"verification.html"`
	Welcome       string `env:"EMAIL_TEMPLATE_WELCOME" env-default:"welcome.html"`
	PasswordReset string `env:"EMAIL_TEMPLATE_PASSWORD_RESET" env-default:"password_reset.html"`
}

type QueueConfig struct {
	Concurrency int `env:"QUEUE_CONCURRENCY" env-default:"10"`
	MaxRetry    int `env:"QUEUE_MAX_RETRY" env-default:"5"`
}

type Cache struct {
	Type  string `env:"REDIS_TYPE" env-required:"true" env-description:"specifies provider, one of redis/redisCluster"`
	Redis struct {
		Address  string `env:"REDIS_ADDR" env-default:"" env-description:"redis host:port single instance"`
		Password string `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize int    `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
	RedisCluster struct {
		Addresses []string `env:"REDIS_CLUSTER_ADDRS" env-default:"" env-description:"redis cluster nodes: ['172.27.29.90:7000','172.27.29.91:7001'', '172.27.29.92:7002'']"`
		Password  string   `env:"REDIS_PASSWORD" env-default:"" env-description:"redis password if exists"`
		PoolSize  int      `env:"REDIS_POOL_SIZE" env-default:"70" env-description:"max tcp connections pool size"`
	}
}

func MustLoad() *Config {
	var cfg Config

	// .env is optional, real environment always wins
	_ = godotenv.Load()

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("cannot read config from environment: %s", err)
	}

	return &cfg
}
