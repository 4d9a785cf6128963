package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

// SlackConfig carries the externally supplied messaging secrets. The
// sink is disabled when either value is missing.
type SlackConfig struct {
	Token   string `mapstructure:"token"`
	Channel string `mapstructure:"channel"`
}

func (c SlackConfig) Enabled() bool {
	return c.Token != "" && c.Channel != ""
}

type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

func (c AMQPConfig) Enabled() bool {
	return c.URL != ""
}

type DispatcherConfig struct {
	QueueSize   int           `mapstructure:"queue_size"`
	Workers     int           `mapstructure:"workers"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	MySQL      MySQLConfig      `mapstructure:"mysql"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Slack      SlackConfig      `mapstructure:"slack"`
	AMQP       AMQPConfig       `mapstructure:"amqp"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
}

// Load reads config.yaml from the working directory when present and
// overlays DELIVERY_*-prefixed environment variables
// (e.g. DELIVERY_SLACK_TOKEN) on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("mysql.dsn", "root:root@tcp(localhost:3306)/delivery?parseTime=true")
	v.SetDefault("redis.addr", "localhost:6379")
	// Secrets default to empty so AutomaticEnv can overlay them; an
	// unset value leaves the corresponding sink disabled.
	v.SetDefault("slack.token", "")
	v.SetDefault("slack.channel", "")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "order.events")
	v.SetDefault("dispatcher.queue_size", 1024)
	v.SetDefault("dispatcher.workers", 4)
	v.SetDefault("dispatcher.send_timeout", "5s")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("DELIVERY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
