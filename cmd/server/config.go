package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-concepts/internal/config"
)

// loadAppConfig loads the configuration from path, if given, and the
// environment.
func loadAppConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"database_driver", cfg.Database.Driver,
		"llm_provider", cfg.LLM.Provider,
		"llm_model", cfg.LLM.Model)
	if cfg.Auth.Enabled() {
		slog.Debug("Auth configuration",
			"jwt_secret_present", cfg.Auth.JWTSecret != "",
			"token_hash_present", cfg.Auth.TokenHash != "")
	}
	return cfg, nil
}
