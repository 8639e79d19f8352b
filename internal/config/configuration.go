package config

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	// WebServer Configuration
	WebServerPort int `mapstructure:"WEBSERVER_PORT"`

	// YouTube Data API credential. The service refuses to start without it.
	YouTubeAPIKey string `mapstructure:"YOUTUBE_API_KEY" validate:"required"`

	// Fetch pipeline
	FetchWorkers int    `mapstructure:"FETCH_WORKERS" validate:"gte=1"`
	YTDLPPath    string `mapstructure:"YTDLP_PATH"`
}

// use reflect to bind environment variables based on mapstructure tags
func bindEnv(c Config) {
	val := reflect.ValueOf(c)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag != "" {
			viper.BindEnv(tag)
		}
	}
}

func LoadConfig(ctx context.Context) (*Config, error) {
	bindEnv(Config{})
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("WEBSERVER_PORT", 8000)
	viper.SetDefault("FETCH_WORKERS", 4)
	viper.SetDefault("YTDLP_PATH", "yt-dlp")

	cfg := Config{}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	slog.Info("Loaded configuration", "port", cfg.WebServerPort, "workers", cfg.FetchWorkers, "ytdlp", cfg.YTDLPPath)

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
