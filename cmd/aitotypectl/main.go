package main

import (
	"os"

	"aitotype/cmd/aitotypectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
