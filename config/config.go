package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings, read from the environment.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	AWSRegion string `env:"AWS_REGION"`

	S3Bucket string `env:"S3_BUCKET_NAME"`

	JWTSecret string `env:"JWT_SECRET,required"`
	JWTIssuer string `env:"JWT_ISSUER" envDefault:"code-battle"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
