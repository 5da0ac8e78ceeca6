package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calorie-buddy/internal/api"
	"calorie-buddy/internal/app"
	"calorie-buddy/internal/config"
)

func main() {
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	command := "serve"
	var args []string
	if len(os.Args) > 1 {
		command, args = os.Args[1], os.Args[2:]
	}

	switch command {
	case "serve":
		err = serve(cfg)
	case "metrics-cleanup":
		err = metricsCleanup(cfg, args)
	case "token":
		err = issueToken(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}
}

func serve(cfg *config.Config) error {
	application, err := app.New(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("cleanup error: %v", err)
		}
	}()

	addr, err := api.ListenAddr(cfg.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP port: %w", err)
	}

	server := api.NewServer(application.Services(), application.ServerOptions())

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Calorie Buddy API listening on %s", addr)
		errCh <- server.Listen(addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-sigCh:
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.ShutdownWithContext(ctx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}

	log.Println("Server exiting")
	return nil
}

func metricsCleanup(cfg *config.Config, args []string) error {
	cleanupCmd := flag.NewFlagSet("metrics-cleanup", flag.ExitOnError)
	days := cleanupCmd.Int("days", 30, "Keep records for the last N days")
	cleanupCmd.Parse(args)

	if *days <= 0 {
		return fmt.Errorf("-days must be positive, got %d", *days)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	affected, err := application.Metrics.Cleanup(context.Background(), *days)
	if err != nil {
		return err
	}
	fmt.Printf("Successfully removed %d old metric records.\n", affected)
	return nil
}

func issueToken(cfg *config.Config, args []string) error {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	subject := tokenCmd.String("subject", "calorie-buddy-client", "Token subject")
	ttl := tokenCmd.Duration("ttl", 24*time.Hour, "Token lifetime")
	tokenCmd.Parse(args)

	token, err := api.IssueToken(cfg.APIJWTSecret, *subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func printUsage() {
	fmt.Println("Usage: calorie-api <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  serve              Run the HTTP API (default)")
	fmt.Println("  metrics-cleanup    Remove old metric records (-days N)")
	fmt.Println("  token              Print a bearer token signed with API_JWT_SECRET (-subject, -ttl)")
}
