package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"docchat/internal/chat"
	"docchat/internal/generate"
	"docchat/internal/memory"
	"docchat/internal/prompt"
	"docchat/internal/retriever"
)

var showChunks bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the ingested corpus",
	Long: `Starts a terminal chat session. Each question is answered from the
ingested documents and past conversation, with the model's response streamed
as it is generated. Type 'exit' to quit.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&showChunks, "show-chunks", false, "print retrieved chunk previews before each answer")
}

// newEngine wires the query-time core from the configuration.
func newEngine(ctx context.Context) (*chat.Engine, error) {
	embedder, err := newEmbedder()
	if err != nil {
		return nil, err
	}
	store, err := openStore()
	if err != nil {
		return nil, err
	}
	mem, err := memory.Open(ctx, cfg.MemoryIndexPath(), cfg.MemoryLogPath(), embedder, slog.Default())
	if err != nil {
		return nil, err
	}
	return chat.New(
		retriever.New(store, embedder, slog.Default()),
		mem,
		prompt.New(cfg.Retrieval.MemoryWindow),
		generate.NewClient(cfg.Generation.BaseURL, cfg.Generation.Model, cfg.StreamTimeout()),
		cfg.Retrieval.TopChunks,
		cfg.Retrieval.TopMemories,
		slog.Default(),
	), nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	engine, err := newEngine(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Chatbot ready! Type 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nUser: ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "exit") {
			return nil
		}

		if showChunks {
			chunks, err := engine.Retrieve(ctx, query, cfg.Retrieval.TopChunks)
			if err != nil {
				return err
			}
			for i, chunk := range chunks {
				fmt.Printf("\nChunk %d:\n%s\n", i+1, preview(chunk, 500))
			}
		}

		fmt.Print("\nResponse: ")
		_, err := engine.Ask(ctx, query, func(fragment string) {
			fmt.Print(fragment)
		})
		fmt.Println()
		switch {
		case errors.Is(err, chat.ErrNoContext):
			fmt.Println("No relevant information found.")
		case err != nil:
			return err
		}
	}
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
