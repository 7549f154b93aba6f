// Package cmd provides the CLI commands for FloatChat.
//
// Commands:
//   - chat: interactive question/answer session on the terminal
//   - ask: answer a single question and exit
//   - serve: HTTP API server
//   - ingest: load float CSV exports into PostgreSQL
//   - index: rebuild the semantic index from stored cycles
//
// Signal handling and graceful shutdown are implemented for all
// long-running commands via context cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zynfvr/sih2/internal/log"
)

// Execute is the main entry point for the FloatChat CLI.
func Execute() error {
	// Initialize logger once at entry point
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(log.New(log.Config{Level: level}))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "chat":
		return runChat()
	case "ask":
		return runAsk()
	case "serve":
		return runServe()
	case "ingest":
		return runIngest()
	case "index":
		return runIndex()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("FloatChat - Conversational assistant for Argo float data")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  floatchat chat           Start interactive chat mode")
	fmt.Println("  floatchat ask <question> Answer a single question and exit")
	fmt.Println("  floatchat serve [addr]   Start HTTP API server (default: 127.0.0.1:8080)")
	fmt.Println("  floatchat ingest <dir>   Load floats.csv, cycles.csv, measurements.csv")
	fmt.Println("  floatchat index          Rebuild the semantic index from stored cycles")
	fmt.Println("  floatchat --version      Show version information")
	fmt.Println("  floatchat --help         Show this help")
	fmt.Println()
	fmt.Println("Chat commands (in interactive mode):")
	fmt.Println("  clear                    Reset the conversation context")
	fmt.Println("  exit, quit               Leave the chat")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  GEMINI_API_KEY           Required: Gemini API key")
	fmt.Println("  DATABASE_URL             Optional: PostgreSQL connection URL")
	fmt.Println("  DEBUG                    Optional: Enable debug logging")
}
