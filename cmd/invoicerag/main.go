package main

import (
	"github.com/joho/godotenv"

	"invoicerag/internal/cli"
)

func main() {
	// API keys are read from the environment; a local .env is honoured when
	// present and silently skipped otherwise.
	godotenv.Load()

	cli.Execute()
}
