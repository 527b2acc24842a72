package config

import (
	"fmt"

	"github.com/growship/backend/internal/db"
	"github.com/growship/backend/internal/importer"
	"github.com/spf13/viper"
)

// Config is everything the server needs at startup.
type Config struct {
	DB       db.Config
	Limits   importer.Limits
	HTTPAddr string
}

// Load reads config.yaml from configPath with environment overrides. Missing
// file is not an error; defaults plus env vars apply.
func Load(configPath string) (Config, error) {
	cfg := Config{
		DB:       db.DefaultConfig(),
		Limits:   importer.DefaultLimits(),
		HTTPAddr: ":8080",
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()     // allow environment overrides
	v.SetEnvPrefix("GS") // map env vars like GS_DATABASE_HOST

	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")
	v.BindEnv("server.addr")
	v.BindEnv("import.max_file_bytes")
	v.BindEnv("import.max_rows")
	v.BindEnv("import.batch_size")
	v.BindEnv("import.max_errors_per_row")

	if err := v.ReadInConfig(); err != nil {
		fmt.Println("No config.yaml found, using defaults and env vars")
	} else {
		fmt.Println("Loaded config.yaml")
	}

	if v.IsSet("database.host") {
		cfg.DB.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.DB.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.DB.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.DB.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.DB.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.DB.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("server.addr") {
		cfg.HTTPAddr = v.GetString("server.addr")
	}

	if v.IsSet("import.max_file_bytes") {
		cfg.Limits.MaxFileBytes = v.GetInt64("import.max_file_bytes")
	}
	if v.IsSet("import.max_rows") {
		cfg.Limits.MaxRows = v.GetInt("import.max_rows")
	}
	if v.IsSet("import.batch_size") {
		cfg.Limits.BatchSize = v.GetInt("import.batch_size")
	}
	if v.IsSet("import.max_errors_per_row") {
		cfg.Limits.MaxErrorsPerRow = v.GetInt("import.max_errors_per_row")
	}

	return cfg, nil
}
