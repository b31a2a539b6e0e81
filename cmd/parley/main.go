// Command parley is a terminal chat client for LLM backends. It streams
// answer tokens to stdout as they arrive and keeps transcripts in a
// local SQLite database.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/parley-llm/parley/internal/config"
	"github.com/parley-llm/parley/internal/domain"
	"github.com/parley-llm/parley/internal/history"
	"github.com/parley-llm/parley/internal/provider/registry"
	"github.com/parley-llm/parley/internal/registration"
	"github.com/parley-llm/parley/internal/telemetry"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	var (
		configPath   = flag.String("config", "parley.yaml", "path to the configuration file")
		providerName = flag.String("provider", "", "provider entry to use (default: config default_provider)")
		model        = flag.String("model", "", "model override")
		session      = flag.String("session", "default", "transcript session name")
		listModels   = flag.Bool("list-models", false, "list the provider's models and exit")
		noStream     = flag.Bool("no-stream", false, "wait for the whole answer instead of streaming")
		verbose      = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	// Logs go to stderr; stdout carries answer tokens.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	shutdown, err := telemetry.InitTracer("parley", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	registration.RegisterBuiltins()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pc, err := cfg.Provider(*providerName)
	if err != nil {
		log.Fatalf("Failed to select provider: %v", err)
	}

	prov, err := registry.New(pc, logger)
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *listModels {
		models, err := prov.ListModels(ctx)
		if err != nil {
			log.Fatalf("Failed to list models: %v", err)
		}
		for _, m := range models {
			fmt.Println(m.ID)
		}
		return
	}

	prompt := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if prompt == "" {
		prompt = readStdin()
	}
	if prompt == "" {
		log.Fatal("No prompt given; pass it as arguments or on stdin")
	}

	var store *history.Store
	var past []domain.Message
	if cfg.HistoryPath != "" {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			log.Fatalf("Failed to open history: %v", err)
		}
		defer store.Close()

		past, err = store.Recent(ctx, *session, 0)
		if err != nil {
			log.Fatalf("Failed to load history: %v", err)
		}
	}

	// SIGINT mid-stream cancels the in-flight request; whatever already
	// arrived is kept as a truncated answer.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("interrupt received, cancelling request")
		prov.Cancel()
	}()

	req := &domain.ChatRequest{
		History: past,
		Prompt:  prompt,
		Model:   *model,
		Stream:  !*noStream,
	}

	inReasoning := false
	sink := func(ev domain.StreamEvent) {
		switch ev.Kind {
		case domain.KindReasoning:
			if !inReasoning {
				fmt.Fprint(os.Stderr, "\n[reasoning] ")
				inReasoning = true
			}
			fmt.Fprint(os.Stderr, ev.Text)
		default:
			if inReasoning {
				fmt.Fprintln(os.Stderr)
				inReasoning = false
			}
			fmt.Print(ev.Text)
		}
	}

	result, err := prov.SendMessage(ctx, req, sink)
	if err != nil {
		if domain.IsErrorType(err, domain.ErrorTypeCancelled) {
			fmt.Fprintln(os.Stderr, "cancelled")
			os.Exit(130)
		}
		log.Fatalf("Request failed: %v", err)
	}
	fmt.Println()
	if result.Truncated {
		fmt.Fprintln(os.Stderr, "[answer truncated]")
	}

	if store != nil {
		user := domain.NewMessage(domain.RoleUser, prompt)
		if err := store.Append(ctx, *session, user); err != nil {
			logger.Error("failed to record prompt", slog.String("error", err.Error()))
		}
		if err := store.Append(ctx, *session, result.Message); err != nil {
			logger.Error("failed to record answer", slog.String("error", err.Error()))
		}
	}
}

func readStdin() string {
	stat, err := os.Stdin.Stat()
	if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	var sb strings.Builder
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		sb.WriteString(scanner.Text())
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}
