package main

import (
	"os"

	"zheliyou/cmd/zlyctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
