// Command mapcrownctl checks datasets, previews daily challenges and
// publishes dataset files to object storage.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
