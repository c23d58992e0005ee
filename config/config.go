package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Store
	Mongo
	Postgres
	HTTPServer
	Sweeper
	Archive
	Log
}

type Store struct {
	Driver  string        `env:"STORE_DRIVER" env-default:"mongo"`
	Timeout time.Duration `env:"STORE_TIMEOUT" env-default:"5s"`
}

type Mongo struct {
	URI        string `env:"MONGO_URI"`
	DB         string `env:"MONGO_DB" env-default:"bulletin"`
	Collection string `env:"MONGO_COLLECTION" env-default:"posts"`
}

type Postgres struct {
	User       string `env:"POSTGRES_USER" env-default:"postgres"`
	Pass       string `env:"POSTGRES_PASSWORD" env-default:"postgres"`
	Host       string `env:"POSTGRES_HOST" env-default:"localhost"`
	Port       string `env:"POSTGRES_PORT" env-default:"5432"`
	DB         string `env:"POSTGRES_DB" env-default:"posts"`
	Migrations string `env:"POSTGRES_MIGRATIONS" env-default:"./migrations"`
}

type HTTPServer struct {
	BindAddress     string        `env:"BIND_ADDRESS" env-default:""`
	BindPort        string        `env:"PORT" env-default:"3000"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"5s"`
	StaticDir       string        `env:"STATIC_DIR" env-default:"public"`
	GinMode         string        `env:"GIN_MODE" env-default:"release"`
}

type Sweeper struct {
	Interval  time.Duration `env:"SWEEP_INTERVAL" env-default:"24h"`
	Retention time.Duration `env:"RETENTION" env-default:"720h"`
}

type Archive struct {
	Enabled bool `env:"ARCHIVE_ENABLED" env-default:"false"`
	MinIO
}

type MinIO struct {
	User   string `env:"MINIO_USER" env-default:"minioadmin"`
	Pass   string `env:"MINIO_PASSWORD" env-default:"minioadmin"`
	Host   string `env:"MINIO_HOST" env-default:"localhost"`
	Port   string `env:"MINIO_PORT" env-default:"9000"`
	Bucket string `env:"MINIO_BUCKET" env-default:"board-archive"`
	Secure bool   `env:"MINIO_SECURE" env-default:"false"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"text"`
}

// New loads env (if the file exists) over the process environment and reads
// the configuration from it.
func New(env string) (*Config, error) {
	conf := &Config{}

	if err := godotenv.Overload(env); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("godotenv.Overload: %w", err)
	}

	if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("cleanenv.ReadEnv: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI is required when STORE_DRIVER=mongo")
		}
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Sweeper.Interval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive, got %v", c.Sweeper.Interval)
	}
	if c.Sweeper.Retention <= 0 {
		return fmt.Errorf("RETENTION must be positive, got %v", c.Sweeper.Retention)
	}
	return nil
}

func (p Postgres) URL() string {
	return fmt.Sprintf(
		"postgresql://%v:%v@%v:%v/%v?sslmode=disable", p.User, p.Pass, p.Host, p.Port, p.DB)
}

func (h HTTPServer) Addr() string {
	return fmt.Sprintf("%v:%v", h.BindAddress, h.BindPort)
}
