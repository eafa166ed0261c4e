package internal

import (
	"fmt"
	"os"

	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/logger"
	"github.com/hyperterse/graphgate/core/parser"
)

// DefaultConfigFile is read when no path is given
const DefaultConfigFile = "graphgate.yaml"

// LoadConfig loads and parses a configuration file, returning the model (which includes server config)
func LoadConfig(filePath string) (*domain.Model, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}
	return LoadConfigFromString(string(content))
}

// LoadConfigFromString loads and parses a configuration from a YAML string, returning the model
func LoadConfigFromString(yamlContent string) (*domain.Model, error) {
	model, err := parser.ParseYAML([]byte(yamlContent))
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return model, nil
}

// ResolvePort resolves the port from CLI flag, config file, env var, or default
func ResolvePort(cliPort string, model *domain.Model) string {
	if cliPort != "" {
		return cliPort
	}
	if model != nil && model.Server.Port != "" {
		return model.Server.Port
	}
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

// ResolveGRPCPort resolves the gRPC port from CLI flag, config file or env
// var. An empty result leaves gRPC disabled.
func ResolveGRPCPort(cliPort string, model *domain.Model) string {
	if cliPort != "" {
		return cliPort
	}
	if model != nil && model.Server.GRPCPort != "" {
		return model.Server.GRPCPort
	}
	return os.Getenv("GRPC_PORT")
}

// ResolveLogLevel resolves the log level from verbose flag, CLI flag, config file, or default
func ResolveLogLevel(verbose bool, cliLogLevel int, model *domain.Model) int {
	if verbose {
		return logger.LogLevelDebug
	}
	if cliLogLevel > 0 {
		return cliLogLevel
	}
	if model != nil && model.Server.LogLevel > 0 {
		return model.Server.LogLevel
	}
	return logger.LogLevelInfo
}
