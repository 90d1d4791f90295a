package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"docchat/internal/chat"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chat over HTTP",
	Long: `Starts an HTTP server exposing the chat engine. POST /api/chat with a
JSON body {"query": "..."} streams the response as plain text; GET /health
reports readiness.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "0.0.0.0:7860", "listen address")
}

type chatRequest struct {
	Query string `json:"query"`
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	engine, err := newEngine(ctx)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default().With("request_id", uuid.New().String())

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
			http.Error(w, "body must be JSON with a non-empty \"query\"", http.StatusBadRequest)
			return
		}
		logger.Info("chat request", "query", req.Query)

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		flusher, _ := w.(http.Flusher)

		_, err := engine.Ask(r.Context(), req.Query, func(fragment string) {
			fmt.Fprint(w, fragment)
			if flusher != nil {
				flusher.Flush()
			}
		})
		switch {
		case errors.Is(err, chat.ErrNoContext):
			fmt.Fprint(w, "No relevant information found.")
		case err != nil:
			logger.Error("chat failed", "error", err)
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
	})

	server := &http.Server{Addr: serveAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	slog.Info("serving chat", "addr", serveAddr)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
