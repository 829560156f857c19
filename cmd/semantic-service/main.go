package main

import (
	"log"
	"os"

	semantic "github.com/krupanidhi/AutomatedTriageSystem"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load .env file when present; in containers the environment is
	// already populated.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	cfg, err := semantic.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "semantic-service",
		Short: "Semantic analysis service for free-text survey comments",
	}

	rootCmd.AddCommand(semantic.ServeCmd(cfg))
	rootCmd.AddCommand(semantic.AnalyzeCmd(cfg))
	rootCmd.AddCommand(semantic.CleanCmd(cfg))

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
