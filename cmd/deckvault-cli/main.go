package main

import "deckvault/cmd/deckvault-cli/cmd"

func main() {
	cmd.Execute()
}
