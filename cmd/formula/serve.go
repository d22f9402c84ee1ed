package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lemonberrylabs/record-formula/pkg/api"
	"github.com/lemonberrylabs/record-formula/pkg/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the formula HTTP API",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "HTTP server port (default 8787, env PORT)")
	cmd.Flags().String("host", "", "Bind address (default 0.0.0.0, env HOST)")
	cmd.Flags().String("formulas-dir", "", "Directory of formula catalogs to load at startup (env FORMULAS_DIR)")
	return cmd
}

// serveConfig is the resolved server configuration: flag, then env, then
// default.
type serveConfig struct {
	Host        string
	Port        string
	FormulasDir string
}

func (c serveConfig) addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func resolveServeConfig(cmd *cobra.Command) serveConfig {
	cfg := serveConfig{
		Port:        envOrDefault("PORT", "8787"),
		Host:        envOrDefault("HOST", "0.0.0.0"),
		FormulasDir: os.Getenv("FORMULAS_DIR"),
	}
	if v, _ := cmd.Flags().GetInt("port"); v != 0 {
		cfg.Port = fmt.Sprintf("%d", v)
	}
	if v, _ := cmd.Flags().GetString("host"); v != "" {
		cfg.Host = v
	}
	if v, _ := cmd.Flags().GetString("formulas-dir"); v != "" {
		cfg.FormulasDir = v
	}
	return cfg
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := resolveServeConfig(cmd)

	s := store.New()
	server := api.New(s)

	if cfg.FormulasDir != "" {
		if err := server.LoadDir(cfg.FormulasDir); err != nil {
			log.Printf("Warning: failed to load formulas directory: %v", err)
		}
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down formula server...")
		if err := server.Shutdown(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	}()

	log.Printf("Formula API listening on %s", cfg.addr())
	if cfg.FormulasDir == "" {
		log.Printf("No --formulas-dir specified, starting with an empty registry")
	}
	return server.Listen(cfg.addr())
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
