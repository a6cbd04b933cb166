package main

import (
	"fmt"
	"os"

	"whisper-stt/cmd/stt/cmd"
	"whisper-stt/internal/config"
)

func main() {
	// A missing .env is fine; a malformed one is only a warning
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  Configuration Warning: %v\n", err)
	}

	cmd.Execute()
}
