// Package config loads the configuration shared by an application's web
// server and its task workers.
//
// Files are found by convention (cmd/<service>/config.yml, config/config.yml,
// ./config.yml), a matching .env file is loaded with godotenv, and
// TASKBRIDGE_* environment variables override file values through viper.
//
//	var cfg config.ServiceConfig
//	if err := config.LoadConfig("billing", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
