package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var buildVersion = "dev"

// SetVersion records the version printed by --version and reported to
// telemetry.
func SetVersion(v string) {
	buildVersion = v
}

// Version returns the version set by SetVersion
func Version() string {
	return buildVersion
}

// Flag targets shared by serve, dev and validate.
var (
	configFile  string
	source      string
	port        string
	grpcPort    string
	logLevel    int
	verbose     bool
	logTags     string
	logFile     bool
	showVersion bool
)

var rootCmd = &cobra.Command{
	Use:   "graphgate",
	Short: "Serve a GraphQL API over your databases from one YAML file",
	Long: `graphgate reads a model of adapters, types, queries and mutations from a
YAML file and serves it as a GraphQL endpoint. Each field runs a statement
on its adapter's connector; arguments and parent values are substituted
into the statement before it runs.

Use "serve" in production, "dev" to reload the model whenever the file
changes, and "validate" to check a config without connecting to anything.`,
	Example: `  graphgate serve -f graphgate.yaml
  graphgate dev ./api --port 8080
  graphgate validate --source "$(cat graphgate.yaml)"`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion)
			return nil
		}
		return cmd.Help()
	},
}

var completionCmd = &cobra.Command{
	Use:          "completion [bash|zsh|fish|powershell]",
	Short:        "Print a shell completion script for graphgate",
	Hidden:       true,
	ValidArgs:    []string{"bash", "zsh", "fish", "powershell"},
	Args:         cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		default:
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
	},
}

// Execute runs the command named by args
func Execute(args []string) error {
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(completionCmd)
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the graphgate version and exit")
}

// LoadEnvFiles loads the first .env file found in fromDir, then the working
// directory, then the directory of the executable. Variables already set in
// the environment are never overridden.
func LoadEnvFiles(fromDir string) {
	envFiles := []string{".env.local", ".env.development", ".env"}

	if fromDir != "" {
		for _, envFile := range envFiles {
			envPath := filepath.Join(fromDir, envFile)
			if err := godotenv.Load(envPath); err == nil {
				return
			}
		}
	}

	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			return
		}
	}

	if execPath, err := os.Executable(); err == nil {
		if realPath, err := filepath.EvalSymlinks(execPath); err == nil {
			execPath = realPath
		}
		execDir := filepath.Dir(execPath)
		for _, envFile := range envFiles {
			envPath := filepath.Join(execDir, envFile)
			if err := godotenv.Load(envPath); err == nil {
				return
			}
		}
	}
}
