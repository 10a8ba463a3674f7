package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appconfig "github.com/saker-ai/classroom-avatar/internal/config"
	"github.com/saker-ai/classroom-avatar/internal/model"
	"github.com/saker-ai/classroom-avatar/pkg/runtime"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "classroom-avatar",
		Short:         "Serve the classroom avatar to browser clients",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to conf.yaml (default: discover from working directory)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "clips [model-file]",
		Short: "List animation clips of the configured model, or of the given file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listClips(cmd, configPath, args)
		},
	})
	return root
}

func serve(ctx context.Context, configPath string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server, err := runtime.New(configPath)
	if err != nil {
		return err
	}
	logger := server.Logger()
	defer func() { _ = logger.Sync() }()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run(ctx) }()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http server error", zap.Error(err))
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("http server stopped")
	return nil
}

func listClips(cmd *cobra.Command, configPath string, args []string) error {
	cfg, err := appconfig.LoadConfig(configPath)
	if err != nil {
		return err
	}
	path := cfg.ModelPath(cfg.CharacterConfig)
	if len(args) == 1 {
		path = args[0]
	}
	catalog, err := model.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %s\n", catalog.File, strings.Join(catalog.Clips, ", "))
	if len(args) == 0 {
		for _, state := range catalog.Missing(cfg.CharacterConfig.Clips) {
			fmt.Fprintf(out, "missing clip for %s: %q\n", state, cfg.CharacterConfig.Clips[state])
		}
	}
	return nil
}
