// Command devtoken prints a bearer token accepted by a gateway running with
// the same JWT_SECRET and JWT_ISSUER.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/Tyrowin/gochat-gateway/internal/auth"
	"github.com/Tyrowin/gochat-gateway/internal/server"
)

func main() {
	identity := flag.String("user", "", "identity to put in the token")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*identity, *ttl); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(identity string, ttl time.Duration) error {
	if identity == "" {
		return fmt.Errorf("-user is required")
	}
	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	token, err := auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer).Issue(identity, ttl)
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}
	fmt.Println(token)
	return nil
}
