package main

import (
	"fmt"
	"os"

	"github.com/pranshuparmar/ports/internal/cmd"
)

// Set at build time:
//
//	go build -ldflags "-X main.version=v0.1.0 -X main.commit=$(git rev-parse --short HEAD) -X 'main.buildDate=$(date +%Y-%m-%d)'" ./cmd/ports
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

func main() {
	v := version
	if commit != "" {
		v = fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate)
	}
	os.Exit(cmd.Execute(v))
}
