package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A project .env may set TOKMAP_GRAMMAR_DIR; absence is fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		exitCode := 1
		if withCode, ok := err.(interface{ ExitCode() int }); ok {
			exitCode = withCode.ExitCode()
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode)
	}
}
