package runtime

import (
	"github.com/hyperterse/graphgate/core/runtime/server"
)

// Runtime represents the graphgate runtime server
type Runtime = server.Runtime

// NewRuntime creates a new runtime instance
var NewRuntime = server.NewRuntime
