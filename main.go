package main

import "github.com/KaramelBytes/sporesheet-cli/cmd"

func main() {
	cmd.Execute()
}
