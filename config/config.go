package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// PostgresConfig points at the durable ledger store.
type PostgresConfig struct {
	DSN             string        `env:"POSTGRES_DSN" env-required:"true"`
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" env-default:"20"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" env-default:"30m"`
}

// RedisConfig backs the message-nonce replay cache.
type RedisConfig struct {
	ServerAddr string        `env:"REDIS_SERVER_ADDRESS" env-required:"true"`
	NonceTTL   time.Duration `env:"REDIS_NONCE_TTL" env-default:"10m"`
}

// MinIoConfig backs file-envelope chunk storage.
type MinIoConfig struct {
	Endpoint     string `env:"MINIO_ENDPOINT" env-required:"true"`
	RootUser     string `env:"MINIO_ROOT_USER" env-required:"true"`
	RootPassword string `env:"MINIO_ROOT_PASSWORD" env-required:"true"`
	UseSSL       bool   `env:"MINIO_USE_SSL" env-default:"false"`
	Bucket       string `env:"MINIO_BUCKET" env-default:"securemsg-chunks"`
}

// JWTConfig is the bearer-token verification key used to establish
// caller identity for the relay's auth middleware (§4.4 item 1).
type JWTConfig struct {
	PublicKeyPath string `env:"JWT_PUBLIC_KEY_PATH" env-required:"true"`
}

// HTTPServConfig is the relay's own listen address.
type HTTPServConfig struct {
	ServerAddr string `env:"HTTP_SERVER_ADDRESS" env-required:"true"`
}

// HandshakeLimiter rate-limits the three key-exchange endpoints, which
// are the cheapest way to burn the relay's signature-verification CPU
// (§4.4, §7).
type HandshakeLimiter struct {
	RPC   float64       `env:"HANDSHAKE_LIMITER_RPC" env-default:"5"`
	Burst int           `env:"HANDSHAKE_LIMITER_BURST" env-default:"10"`
	TTL   time.Duration `env:"HANDSHAKE_LIMITER_EXP_TTL" env-default:"1m"`
}

// MessageLimiter rate-limits POST /messages independently of the
// handshake endpoints since it is called far more often per session.
type MessageLimiter struct {
	RPC   float64       `env:"MESSAGE_LIMITER_RPC" env-default:"20"`
	Burst int           `env:"MESSAGE_LIMITER_BURST" env-default:"40"`
	TTL   time.Duration `env:"MESSAGE_LIMITER_EXP_TTL" env-default:"1m"`
}

// SessionConfig governs handshake TTL and the freshness window shared
// across every Init/Respond/Confirm check (§4.4 item 3, §3).
type SessionConfig struct {
	TTL             time.Duration `env:"SESSION_TTL" env-default:"10m"`
	FreshnessWindow time.Duration `env:"FRESHNESS_WINDOW" env-default:"5m"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" env-default:"1m"`
}

type Config struct {
	Postgres  PostgresConfig
	Redis     RedisConfig
	Minio     MinIoConfig
	JWT       JWTConfig
	HTTPServ  HTTPServConfig
	HSLimiter HandshakeLimiter
	MsgLimiter MessageLimiter
	Session   SessionConfig
}

// MustLoad reads the .env-style config file named by -config, panicking
// on any missing file or required field, matching the boot-time failure
// mode this system's relay and clients both rely on.
func MustLoad() *Config {
	path := getConfigPath()
	if path == "" {
		panic("config path is empty")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		panic("config file does not exist: " + path)
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Sprintf("no .env file found at %s: %v", path, err))
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic(fmt.Sprintf("failed to load environment variables: %v", err))
	}
	return &cfg
}

func getConfigPath() string {
	var res string
	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()
	return res
}
