package main

import "github.com/soulforge-ai/soulforge/cmd"

func main() {
	cmd.Execute()
}
