package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ffarham/web-server/pkg/config"
	"github.com/ffarham/web-server/pkg/handler"
	"github.com/ffarham/web-server/pkg/logging"
	"github.com/ffarham/web-server/pkg/resource"
	"github.com/ffarham/web-server/pkg/server"
	"github.com/ffarham/web-server/pkg/version"
	"github.com/spf13/cobra"
)

// rootOptions holds the values of the persistent flags
type rootOptions struct {
	configPath  string
	host        string
	port        int
	workers     int
	root        string
	debug       bool
	showVersion bool
	cfg         *config.Config
}

// NewRootCmd creates the root command for web-server
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   version.AppName,
		Short: version.Description,
		Long: fmt.Sprintf(`%s - %s

Serves the HTML documents under the resource root to GET requests.
`, version.AppName, version.Description),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if opts.configPath != "" {
				cfg = config.LoadOrDefault(opts.configPath)
			}
			if err := opts.applyFlags(cmd, cfg); err != nil {
				return err
			}
			opts.cfg = cfg

			logging.InitGlobalLogger(opts.debug, cfg)
			if opts.configPath != "" {
				logging.InfoWith("Loaded configuration", map[string]interface{}{
					"path": opts.configPath,
				})
			}
			logging.Debug("Debug logging enabled")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetVersionInfo())
				return nil
			}
			return runServer(cmd.Context(), opts.cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.host, "host", "", "Address to bind (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (overrides config)")
	rootCmd.PersistentFlags().IntVarP(&opts.workers, "workers", "w", 0, "Number of worker goroutines (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&opts.root, "root", "r", "", "Directory holding the HTML documents (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&opts.debug, "debug", "d", false, "Enable debug mode")
	rootCmd.Flags().BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")

	rootCmd.AddCommand(newGetCmd(opts))

	return rootCmd
}

// applyFlags copies explicitly set flags over the loaded configuration
func (o *rootOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Server.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if flags.Changed("workers") {
		cfg.Server.MaxWorkers = o.workers
	}
	if flags.Changed("root") {
		cfg.Resources.Root = o.root
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// runServer serves until SIGINT or SIGTERM, then drains in-flight connections
func runServer(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first signal a second one gets the default behavior and kills the process
	context.AfterFunc(ctx, stop)

	resolver := resource.NewFromConfig(cfg, logging.WithComponent("resource"))
	h := handler.New(resolver, handler.OptionsFromConfig(cfg), logging.WithComponent("handler"))
	srv := server.New(cfg, h, logging.WithComponent("server"))

	logging.InfoWith("Starting server", map[string]interface{}{
		"address": cfg.ServerAddress(),
		"root":    cfg.Resources.Root,
		"workers": cfg.Server.MaxWorkers,
	})

	if err := srv.Start(ctx); err != nil {
		logging.ErrorWith("Server failed", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}

	logging.Info("Server stopped")
	return nil
}
