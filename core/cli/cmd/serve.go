package cmd

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperterse/graphgate/core/cli/internal"
	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/logger"
	"github.com/hyperterse/graphgate/core/observability"
	"github.com/hyperterse/graphgate/core/parser"
	"github.com/hyperterse/graphgate/core/runtime"
	"github.com/hyperterse/graphgate/core/runtime/server"
)

// serveCmd runs the gateway for a configuration file until interrupted
var serveCmd = &cobra.Command{
	Use:           "serve [config]",
	Short:         "Serve the GraphQL gateway described by a config file",
	RunE:          runServe,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addServerFlags(serveCmd)
}

func addServerFlags(c *cobra.Command) {
	c.Flags().StringVarP(&configFile, "file", "f", "", "Path to the configuration file (default: ./graphgate.yaml)")
	c.Flags().StringVarP(&port, "port", "p", "", "Server port (overrides config file and PORT env var)")
	c.Flags().StringVar(&grpcPort, "grpc-port", "", "gRPC health port (overrides config file and GRPC_PORT env var; disabled when empty)")
	c.Flags().IntVar(&logLevel, "log-level", 0, "Log level: 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG, 5=TRACE (overrides config file)")
	c.Flags().BoolVarP(&verbose, "verbose", "", false, "Enable verbose logging (sets log level to DEBUG)")
	c.Flags().StringVar(&logTags, "log-tags", "", "Filter logs by tags (comma-separated, use -tag to exclude). Overrides GRAPHGATE_LOG_TAGS env var")
	c.Flags().BoolVar(&logFile, "log-file", false, "Stream logs to file in /tmp/.graphgate/logs/")
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, err := resolveConfigPath(args)
	if err != nil {
		return err
	}

	rt, telemetry, err := PrepareRuntime(cmd.Context(), configPath)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(telemetry)

	return rt.Start()
}

func resolveConfigPath(args []string) (string, error) {
	log := logger.New("serve")

	var configPath string
	switch {
	case len(args) > 0 && configFile != "":
		return "", log.Errorf("cannot combine path argument with --file")
	case len(args) > 0:
		configPath = args[0]
	case configFile != "":
		configPath = configFile
	default:
		configPath = internal.DefaultConfigFile
	}

	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		configPath = filepath.Join(configPath, internal.DefaultConfigFile)
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return "", log.Errorf("invalid config path %q: %w", configPath, err)
	}
	return absPath, nil
}

func configureLogging() error {
	log := logger.New("main")

	if verbose {
		logger.SetLogLevel(logger.LogLevelDebug)
	} else if logLevel > 0 {
		logger.SetLogLevel(logLevel)
	} else {
		logger.SetLogLevel(logger.LogLevelInfo)
	}

	tagFilterStr := logTags
	if tagFilterStr == "" {
		tagFilterStr = os.Getenv("GRAPHGATE_LOG_TAGS")
	}
	if tagFilterStr != "" {
		logger.SetTagFilter(tagFilterStr)
	}

	if logFile {
		filePath, err := logger.SetLogFile()
		if err != nil {
			return log.Errorf("failed to initialize log file: %w", err)
		}
		log.Infof("Log file: %s", filePath)
	}
	return nil
}

// loadModel reads and validates configPath, printing validation errors
func loadModel(configPath string) (*domain.Model, error) {
	log := logger.New("main")

	model, err := internal.LoadConfig(configPath)
	if err != nil {
		parser.LogValidationErrors(err)
		return nil, log.Errorf("failed to load %s: %w", configPath, err)
	}
	return model, nil
}

// PrepareRuntime configures logging and telemetry, loads the config and
// builds a runtime that has not started listening yet.
func PrepareRuntime(ctx context.Context, configPath string) (*runtime.Runtime, *observability.Providers, error) {
	log := logger.New("main")

	if err := configureLogging(); err != nil {
		return nil, nil, err
	}

	LoadEnvFiles(filepath.Dir(configPath))

	model, err := loadModel(configPath)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("Configuration loaded: %s", model.Name)

	if logLevel == 0 && !verbose {
		logger.SetLogLevel(internal.ResolveLogLevel(verbose, logLevel, model))
	}

	telemetry, err := observability.Setup(ctx, Version())
	if err != nil {
		return nil, nil, log.Errorf("failed to initialize telemetry: %w", err)
	}

	rt, err := runtime.NewRuntime(ctx, model,
		server.WithPort(internal.ResolvePort(port, model)),
		server.WithGRPCPort(internal.ResolveGRPCPort(grpcPort, model)),
	)
	if err != nil {
		shutdownTelemetry(telemetry)
		return nil, nil, err
	}
	log.Infof("Runtime initialized")
	return rt, telemetry, nil
}

func shutdownTelemetry(p *observability.Providers) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Shutdown(ctx); err != nil {
		logger.New("observability").Warnf("Telemetry shutdown: %v", err)
	}
}
