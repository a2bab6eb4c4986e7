package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Tyrowin/gochat-gateway/internal/auth"
	"github.com/Tyrowin/gochat-gateway/internal/chat"
	"github.com/Tyrowin/gochat-gateway/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := server.LoadConfig()
	if err != nil {
		return err
	}
	log := cfg.NewLogger(os.Stdout)
	slog.SetDefault(log)

	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	store := chat.NewMemoryStore(log)
	notifications := chat.NewMemoryNotifications()
	for id, participants := range parseSeeds(cfg.SeedConversations) {
		store.CreateConversation(id, participants...)
		log.Info("Seeded conversation", "conversation", id, "participants", participants)
	}

	hub := server.NewHub(server.HubOptions{
		Chat:                store,
		Notifications:       notifications,
		CollaboratorTimeout: cfg.CollaboratorTimeout,
		Logger:              log,
	})
	store.Attach(hub)
	notifications.Attach(hub)
	server.StartHub(hub)

	gateway := server.NewServer(*cfg, hub, auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer), log)
	httpServer := server.CreateServer(cfg.Port, server.SetupRoutes(gateway))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer, log)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownErr := server.ShutdownServer(httpServer, cfg.ShutdownTimeout, log)
	if err := hub.Shutdown(cfg.ShutdownTimeout); err != nil {
		return errors.Join(shutdownErr, fmt.Errorf("hub shutdown: %w", err))
	}
	return shutdownErr
}

// parseSeeds reads "conv1=alice,bob;conv2=alice,carol".
func parseSeeds(raw string) map[string][]string {
	seeds := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		id, members, ok := strings.Cut(strings.TrimSpace(entry), "=")
		if !ok || id == "" {
			continue
		}
		for _, m := range strings.Split(members, ",") {
			if m = strings.TrimSpace(m); m != "" {
				seeds[id] = append(seeds[id], m)
			}
		}
	}
	return seeds
}
