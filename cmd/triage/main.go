package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/mikey/mail-triage/internal/core"
	"github.com/mikey/mail-triage/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// run triages one email read as JSON from a file or stdin and prints
// the result as indented JSON.
func run(flags *di.CLIFlags, logger *zap.Logger, service *core.TriageService, summarizer core.Summarizer) error {
	defer logger.Sync()

	var emailReader io.Reader
	if flags.InputFile != "" {
		file, err := os.Open(flags.InputFile)
		if err != nil {
			return fmt.Errorf("failed to open input file %s: %w", flags.InputFile, err)
		}
		defer file.Close()
		emailReader = file
		logger.Debug("Reading email from file", zap.String("file", flags.InputFile))
	} else {
		emailReader = os.Stdin
		logger.Debug("Reading email from stdin")
	}

	var email core.Email
	if err := json.NewDecoder(emailReader).Decode(&email); err != nil {
		return fmt.Errorf("failed to parse email JSON: %w", err)
	}
	if err := email.Validate(); err != nil {
		return err
	}

	result, err := service.ProcessEmail(context.Background(), &email)
	if err != nil {
		return fmt.Errorf("failed to triage email: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	// Close any resources that need closing
	if closer, ok := summarizer.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close summarizer", zap.Error(err))
		}
	}
	return nil
}
