package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"TocDigest/internal/cli"
)

func main() {
	// optional .env for local runs; CI injects real environment variables
	_ = godotenv.Load()

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
