// Command token-generator mints a JWT for a user id using the server's
// auth configuration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/scry-concepts/internal/config"
	"github.com/phrazzld/scry-concepts/internal/service/auth"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	userID := flag.Int64("user", 0, "user id to embed in the token")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token-generator: %v\n", err)
		os.Exit(1)
	}
	if err := run(context.Background(), cfg.Auth, *userID, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "token-generator: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.AuthConfig, userID int64, out io.Writer) error {
	if cfg.JWTSecret == "" {
		return errors.New("auth.jwt_secret is not configured")
	}
	if userID < 0 {
		return errors.New("user id must not be negative")
	}

	svc, err := auth.NewJWTService(cfg)
	if err != nil {
		return err
	}
	token, err := svc.GenerateToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
