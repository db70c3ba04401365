// Command mars is a session-scoped document question-answering tool.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/mars-labs/mars-cli/internal/adapters/driving/cli"
)

func main() {
	// Optional .env for GOOGLE_API_KEY and friends; absence is fine.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
