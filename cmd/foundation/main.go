package main

import (
	"os"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
