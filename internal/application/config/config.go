package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/pion/webrtc/v4"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:3000"`

	// JWTSecret verifies identity tokens minted by the upstream
	// auth service. The coordinator never issues tokens itself.
	JWTSecret string `env:"JWT_SECRET,required"`

	StunServers []string `env:"STUN_SERVERS" envDefault:"stun:stun.l.google.com:19302"`
	IceServers  []webrtc.ICEServer

	Room     RoomConfig
	Postgres PostgresConfig
}

type RoomConfig struct {
	// DefaultCapacity applies when a first admission carries no
	// capacity hint.
	DefaultCapacity int `env:"ROOM_DEFAULT_CAPACITY" envDefault:"8"`

	MaxChatLength  int `env:"ROOM_MAX_CHAT_LENGTH" envDefault:"2000"`
	MaxImageBytes  int `env:"ROOM_MAX_IMAGE_BYTES" envDefault:"1048576"`
	MaxSignalBytes int `env:"ROOM_MAX_SIGNAL_BYTES" envDefault:"65536"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"lingopeer"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	c.IceServers = []webrtc.ICEServer{
		{URLs: c.StunServers},
	}

	return &c, nil
}
