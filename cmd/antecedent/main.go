// Command antecedent finds phrase antecedents in judicial opinions.
package main

import (
	"os"

	"github.com/turtacn/Antecedent-Intelligence/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(cli.Execute(cli.BuildInfo{
		Version:   version,
		Commit:    commit,
		BuildDate: buildDate,
	}))
}

//Personal.AI order the ending
