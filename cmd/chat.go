package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/zynfvr/sih2/internal/answer"
	"github.com/zynfvr/sih2/internal/app"
	"github.com/zynfvr/sih2/internal/config"
)

// runChat starts the interactive terminal session. One chat process is one
// session: context and memory accumulate under a fresh session ID.
func runChat() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()
	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	sessionID := uuid.NewString()
	fmt.Println("FloatChat ready. Ask about Argo floats (exit, quit, clear).")

	return chatLoop(ctx, os.Stdin, os.Stdout, a.Answer, sessionID)
}

// chatLoop reads questions line by line until EOF, exit or quit.
// Split out from runChat so tests can drive it with buffers.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, svc *answer.Service, sessionID string) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Goodbye.")
			return nil
		case "clear":
			svc.ClearSession(sessionID)
			fmt.Fprintln(out, "Context cleared.")
			continue
		}

		ans, err := svc.Answer(ctx, sessionID, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, formatAnswerError(err))
			continue
		}
		fmt.Fprintln(out, ans)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	fmt.Fprintln(out, "Goodbye.")
	return nil
}

// formatAnswerError maps pipeline errors to user-facing messages.
func formatAnswerError(err error) string {
	switch {
	case errors.Is(err, answer.ErrEmptyQuestion):
		return "Please enter a question."
	case errors.Is(err, answer.ErrGenerateTimeout):
		return "The model took too long to answer. Please try again."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
