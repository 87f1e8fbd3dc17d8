// Command locator finds and runs the Go test or subtest at a source position.
package main

import "github.com/specvital/locator/internal/cli"

func main() {
	cli.Execute()
}
