package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hyperterse/graphgate/core/cli/internal"
	"github.com/hyperterse/graphgate/core/domain"
	"github.com/hyperterse/graphgate/core/logger"
	"github.com/hyperterse/graphgate/core/parser"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:           "validate [config]",
	Short:         "Validate a graphgate config",
	RunE:          validateConfig,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&configFile, "file", "f", "", "Path to the configuration file (default: ./graphgate.yaml)")
	validateCmd.Flags().StringVarP(&source, "source", "s", "", "Configuration as a string (alternative to --file)")
}

func validateConfig(cmd *cobra.Command, args []string) error {
	log := logger.New("validate")

	var (
		model    *domain.Model
		err      error
		loadFrom string
	)

	if source != "" {
		if configFile != "" || len(args) > 0 {
			return log.Errorf("cannot combine --source with a config path")
		}
		model, err = internal.LoadConfigFromString(source)
		loadFrom = "source"
	} else {
		loadFrom, err = resolveConfigPath(args)
		if err != nil {
			return err
		}
		model, err = internal.LoadConfig(loadFrom)
	}
	if err != nil {
		parser.LogValidationErrors(err)
		return log.Errorf("validation failed: %w", err)
	}

	printValidationSummary(log, loadFrom, model)
	log.Successf("Configuration is valid: %s", loadFrom)
	return nil
}

func printValidationSummary(log *logger.Logger, loadFrom string, model *domain.Model) {
	log.Info("Validation report:")
	log.Infof("  config: %s", loadFrom)
	log.Infof("  name: %s", model.Name)

	log.Infof("  adapters (%d):", len(model.Adapters))
	for _, a := range model.Adapters {
		log.Infof("    - %s (%s)", a.Name, a.Connector)
	}

	log.Infof("  types (%d):", len(model.Types))
	for _, t := range model.Types {
		log.Infof("    - %s: %d field(s)", t.Name, len(t.Fields))
	}

	log.Infof("  queries (%d):", len(model.Queries))
	for _, q := range model.Queries {
		log.Infof("    - %s: %s via %s", q.Name, q.Type, q.Use)
	}
}
