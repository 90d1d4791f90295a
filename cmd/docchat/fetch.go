package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"docchat/internal/github"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <owner>/<repo>[/<path>]",
	Short: "Download a GitHub repository folder into the docs folder",
	Long: `Downloads every ingestible file (.md, .txt, .csv, .pdf) from a GitHub
repository directory into the local docs folder, ready for 'docchat ingest'.

Set GITHUB_TOKEN for higher API rate limits.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	parts := strings.SplitN(args[0], "/", 3)
	if len(parts) < 2 {
		return fmt.Errorf("expected <owner>/<repo>[/<path>], got %q", args[0])
	}
	owner, repo := parts[0], parts[1]
	basePath := ""
	if len(parts) == 3 {
		basePath = parts[2]
	}

	client, err := github.NewClient()
	if err != nil {
		return err
	}
	fetcher := github.NewFetcher(client, owner, repo, basePath, slog.Default())

	count, err := fetcher.Download(ctx, cfg.DocsDir)
	if err != nil {
		return err
	}
	fmt.Printf("Downloaded %d documents into %s\n", count, cfg.DocsDir)
	return nil
}
