package main

import "github.com/agentic-research/appseeds/cmd"

func main() {
	cmd.Execute()
}
