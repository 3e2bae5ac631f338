// Package main is the entry point of spotigo, a command line client for the
// Spotify Web API built on the pkg/spotify library.
package main

import cmd "github.com/toozej/spotigo/cmd/spotigo"

func main() {
	cmd.Execute()
}
