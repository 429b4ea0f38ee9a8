package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eeviriyi/site/internal/app"
	"github.com/eeviriyi/site/internal/config"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Add documents to the assistant's knowledge base",
	Long: `Ingest reads text documents, splits them into sentences, embeds each
sentence, and stores the vectors for retrieval by the assistant's
getInformation tool.

With no arguments, ingest reads a single document from stdin.`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() { _ = a.Close() }()

	if len(args) == 0 {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		return ingestDocument(ctx, a, "stdin", string(content))
	}

	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := ingestDocument(ctx, a, path, string(content)); err != nil {
			return err
		}
	}
	return nil
}

func ingestDocument(ctx context.Context, a *app.App, name, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return fmt.Errorf("%s: document is empty", name)
	}

	res, err := a.Knowledge.AddResource(ctx, content)
	if err != nil {
		return fmt.Errorf("ingesting %s: %w", name, err)
	}
	fmt.Printf("Ingested %s (resource %s)\n", name, res.ID)
	return nil
}
