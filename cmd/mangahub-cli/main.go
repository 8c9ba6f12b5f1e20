// Package main - mangahub-cli, a debug tool for exercising the TCP/UDP
// admin trigger ports directly without going through the gateway.
package main

import "mangahub/internal/cli/root"

func main() {
	root.Execute()
}
