package main

import (
	"log/slog"
	"os"

	"marketing-ops/cmd"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Error loading .env file", "error", err)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
