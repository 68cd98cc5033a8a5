package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel          string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort          string        `yaml:"http-port" env:"HTTP_PORT" env-default:"8083"`
	Redis             Redis         `yaml:"redis"`
	SQLiteStoragePath string        `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"knucklebones.db"`
	ServerKeyPath     string        `yaml:"server-key-path" env:"SERVER_KEY_PATH" env-default:"server.key"`
	ICE               ICE           `yaml:"ice"`
	Deck              Deck          `yaml:"deck"`
	WebSocket         WebSocket     `yaml:"websocket"`
	PrivateQueueTTL   time.Duration `yaml:"private-queue-ttl" env:"PRIVATE_QUEUE_TTL" env-default:"30m"`
}

type Redis struct {
	Host        string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port        string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password    string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB          int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	DialTimeout time.Duration `yaml:"dial-timeout" env-default:"5s"`
}

// ICE - source of the STUN/TURN servers handed to paired clients.
type ICE struct {
	Provider    string `yaml:"provider" env:"ICE_PROVIDER" env-default:"google"`
	TurnTokenID string `yaml:"turn-token-id" env:"TURN_TOKEN_ID"`
	APIToken    string `yaml:"api-token" env:"TURN_API_TOKEN"`
}

type Deck struct {
	Width  int `yaml:"width" env-default:"3"`
	Height int `yaml:"height" env-default:"3"`
}

type WebSocket struct {
	WriteWait      time.Duration `yaml:"write-wait" env-default:"10s"`
	PongWait       time.Duration `yaml:"pong-wait" env-default:"60s"`
	OutboundBuffer int           `yaml:"outbound-buffer" env-default:"32"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if config.Deck.Width <= 0 || config.Deck.Height <= 0 {
		panic(fmt.Errorf("invalid deck size %dx%d", config.Deck.Width, config.Deck.Height))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
