package main

import "github.com/martinemde/longhaul/cmd"

func main() {
	cmd.Execute()
}
