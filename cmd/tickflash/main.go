// Package main is the tickflash entrypoint.
package main

import "tickflash/internal/cli"

func main() {
	cli.Execute()
}
