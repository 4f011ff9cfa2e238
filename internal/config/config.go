package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort  int `yaml:"apiPort"`
	Database struct {
		Type       string `yaml:"type"` // "sqlite" or "postgres"
		Path       string `yaml:"path"`
		WALMode    bool   `yaml:"walMode"`
		MaxRetries int    `yaml:"maxRetries"`
		RetryDelay int    `yaml:"retryDelay"`
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		Name       string `yaml:"name"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		SSLMode    string `yaml:"sslMode"`
	} `yaml:"database"`
	JWT struct {
		Secret                         string `yaml:"secret"`
		AccessExpirationMinutes        int    `yaml:"accessExpirationMinutes"`
		RefreshExpirationDays          int    `yaml:"refreshExpirationDays"`
		ResetPasswordExpirationMinutes int    `yaml:"resetPasswordExpirationMinutes"`
		VerifyEmailExpirationMinutes   int    `yaml:"verifyEmailExpirationMinutes"`
	} `yaml:"jwt"`
	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`
	FCM struct {
		ServerKey string `yaml:"serverKey"`
		Endpoint  string `yaml:"endpoint"`
	} `yaml:"fcm"`
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8081
		log.Println("APIPort not specified, using default 8081")
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "/data/bookline.db"
		log.Println("Database path not specified, using default /data/bookline.db")
	}
	if !v.IsSet("database.walMode") {
		cfg.Database.WALMode = true
	}
	if cfg.Database.MaxRetries == 0 {
		cfg.Database.MaxRetries = 5
	}
	if cfg.Database.RetryDelay == 0 {
		cfg.Database.RetryDelay = 5
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = "dev-secret-change-me"
		log.Println("JWT secret not specified, using insecure development default")
	}
	if cfg.JWT.AccessExpirationMinutes == 0 {
		cfg.JWT.AccessExpirationMinutes = 30
	}
	if cfg.JWT.RefreshExpirationDays == 0 {
		cfg.JWT.RefreshExpirationDays = 30
	}
	if cfg.JWT.ResetPasswordExpirationMinutes == 0 {
		cfg.JWT.ResetPasswordExpirationMinutes = 10
	}
	if cfg.JWT.VerifyEmailExpirationMinutes == 0 {
		cfg.JWT.VerifyEmailExpirationMinutes = 10
	}

	if cfg.FCM.Endpoint == "" {
		cfg.FCM.Endpoint = "https://fcm.googleapis.com/fcm/send"
	}

	return &cfg, nil
}
