// Package main is the entry point for the garagedoor CLI.
package main

import (
	"garagedoor/cli/cmd"
)

func main() {
	cmd.Execute()
}
