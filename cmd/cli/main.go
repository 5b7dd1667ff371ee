package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/caassistant/autoledger/internal/classify"
	"github.com/caassistant/autoledger/internal/extract"
	"github.com/caassistant/autoledger/internal/ledger"
	"github.com/caassistant/autoledger/internal/logger"
	"github.com/caassistant/autoledger/internal/pipeline"
	"github.com/caassistant/autoledger/internal/statement"
)

func main() {
	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "process":
		runProcess(log)
	case "health":
		runHealth(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("AutoLedger CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  process   Parse a local statement PDF and print the ledger result as JSON")
	fmt.Println("  health    Check a running AutoLedger API server")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runProcess(log zerolog.Logger) {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	file := fs.String("file", "", "Path to the statement PDF")
	timeout := fs.Duration("timeout", pipeline.DefaultOverallTimeout, "Overall processing budget")
	fs.Parse(os.Args[2:])

	if *file == "" {
		log.Fatal().Msg("Error: --file is required")
	}

	doc, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read statement")
	}

	ctx := logger.WithContext(context.Background(), log)

	var suggester classify.Suggester
	if os.Getenv("GEMINI_API_KEY") != "" {
		gemini, err := classify.NewGeminiSuggester(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Classifier unavailable, continuing without suggestions")
		} else {
			suggester = gemini
		}
	}

	service := pipeline.NewService(
		extract.NewPDF(),
		statement.NewParser(statement.DefaultRules),
		suggester,
		ledger.DefaultChart(),
		pipeline.Options{OverallTimeout: *timeout},
	)

	result, err := service.Process(ctx, doc)
	if err != nil {
		log.Fatal().Err(err).Msg("Processing failed")
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to encode result")
	}
	fmt.Println(string(out))
}

func runHealth(log zerolog.Logger) {
	fs := flag.NewFlagSet("health", flag.ExitOnError)
	addr := fs.String("addr", "http://localhost:8080", "Base URL of the API server")
	fs.Parse(os.Args[2:])

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*addr + "/api/health")
	if err != nil {
		log.Fatal().Err(err).Msg("Health check failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read health response")
	}

	fmt.Println(string(body))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
