// Package main is the entry point for the covforge CLI.
package main

import "covforge.dev/pkg/covforge/cmd"

func main() {
	cmd.Execute()
}
