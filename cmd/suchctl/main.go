// Package main содержит точку входа консольного клиента suchctl.
package main

import "github.com/IvanChernomyrdin/suchauftrag/internal/agent/cli"

var (
	// buildVersion и buildDate подставляются при сборке через -ldflags "-X".
	buildVersion = "dev"
	buildDate    = "unknown"
)

func main() {
	cli.Execute(buildVersion, buildDate)
}
