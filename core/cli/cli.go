package cli

import (
	"github.com/hyperterse/graphgate/core/cli/cmd"
	"github.com/hyperterse/graphgate/core/logger"
)

// fallbackTag is used for errors that no component tagged
const fallbackTag = "graphgate"

// Run executes the command line for a binary built at version and returns
// the process exit code. A failing command is logged once, under the tag of
// the component that produced the error.
func Run(version string, args []string) int {
	cmd.SetVersion(version)
	if err := cmd.Execute(args); err != nil {
		logger.New(errorTag(err)).Error(err.Error())
		return 1
	}
	return 0
}

func errorTag(err error) string {
	if tag := logger.ErrorTag(err); tag != "" {
		return tag
	}
	return fallbackTag
}
