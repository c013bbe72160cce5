package main

import "macsweep/internal/cli"

// version is set via ldflags: go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	cli.Execute(version)
}
