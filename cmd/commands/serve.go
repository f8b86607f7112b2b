package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pluqqy/pluqqy-studio/internal/cli"
	"github.com/pluqqy/pluqqy-studio/pkg/contentserver"
)

var (
	serveAddr  string
	serveDB    string
	serveToken string
	serveDebug bool
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local content service",
		Long: `Run a content service backed by a SQLite file.

It stores projects and pages and answers generation and chat requests with
simple drafts, which is enough to work with the studio offline.

Examples:
  studio serve
  studio serve --addr :9000 --db /tmp/stories.db`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from settings)")
	cmd.Flags().StringVar(&serveDB, "db", "", "SQLite database path (default from settings)")
	cmd.Flags().StringVar(&serveToken, "token", "", "Require this bearer token")
	cmd.Flags().BoolVar(&serveDebug, "debug", false, "Run gin in debug mode")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cc := newCommandContext()
	settings, err := cc.LoadSettings()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	addr := firstNonEmpty(serveAddr, settings.Server.Addr)
	dbPath := firstNonEmpty(serveDB, settings.Server.Database)
	token := firstNonEmpty(serveToken, settings.Server.Token)

	if !serveDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := contentserver.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli.PrintInfo("Serving content API on %s (database %s)", addr, dbPath)
	slog.Info("content service starting", "addr", addr, "database", dbPath, "auth", token != "")

	if err := contentserver.New(store, token).ListenAndServe(ctx, addr); err != nil {
		return err
	}

	cli.PrintSuccess("Content service stopped")
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
