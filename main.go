package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reddygtvs/Archived-News-RAG/api"
	"github.com/reddygtvs/Archived-News-RAG/batch"
	"github.com/reddygtvs/Archived-News-RAG/config"
	"github.com/reddygtvs/Archived-News-RAG/database"
	"github.com/reddygtvs/Archived-News-RAG/embeddings"
	"github.com/reddygtvs/Archived-News-RAG/guardian"
	"github.com/reddygtvs/Archived-News-RAG/ingestion"
	"github.com/reddygtvs/Archived-News-RAG/llm"
	"github.com/reddygtvs/Archived-News-RAG/rag"
	"github.com/reddygtvs/Archived-News-RAG/store"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.Load()

	switch os.Args[1] {
	case "fetch":
		fetchCmd(cfg, logger, os.Args[2:])
	case "ingest":
		ingestCmd(cfg, logger, os.Args[2:])
	case "serve":
		serveCmd(cfg, logger, os.Args[2:])
	case "query":
		queryCmd(cfg, logger, os.Args[2:])
	case "evaluate":
		evaluateCmd(cfg, logger, os.Args[2:])
	case "clear":
		clearCmd(cfg, logger, os.Args[2:])
	default:
		logger.Printf("unknown command: %s", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func fetchCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("fetch", flag.ExitOnError)
	out := flags.String("out", cfg.RawDataPath, "path to write the fetched JSONL corpus")
	target := flags.Int("target", cfg.Guardian.ArticleTarget, "number of articles to fetch")
	checkOnly := flags.Bool("check", false, "only report the total article count for the date range")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse fetch flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := guardian.NewClient(cfg.Guardian.APIURL, cfg.Guardian.APIKey, logger)
	opts := guardian.FetchOptions{
		FromDate: cfg.Guardian.FromDate,
		ToDate:   cfg.Guardian.ToDate,
		PageSize: cfg.Guardian.PageSize,
		Target:   *target,
	}

	if *checkOnly {
		total, err := client.CheckTotal(ctx, opts)
		if err != nil {
			logger.Fatalf("check total: %v", err)
		}
		logger.Printf("%d articles available between %s and %s", total, opts.FromDate, opts.ToDate)
		return
	}

	articles, err := client.FetchArticles(ctx, opts)
	if err != nil {
		logger.Fatalf("fetch articles: %v", err)
	}

	if err := guardian.WriteJSONL(*out, articles); err != nil {
		logger.Fatalf("write corpus: %v", err)
	}
	logger.Printf("wrote %d articles to %s", len(articles), *out)
}

func ingestCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("ingest", flag.ExitOnError)
	in := flags.String("in", cfg.RawDataPath, "path to the fetched JSONL corpus")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse ingest flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	svc := ingestion.NewService(pgPool, embedder, logger, cfg.Ingest, cfg.Embeddings.Dimension)
	logger.Printf("ingesting %s using %s/%s embeddings", *in, strings.ToUpper(cfg.Embeddings.Provider), cfg.Embeddings.Model)

	if err := svc.IngestFile(ctx, *in); err != nil {
		logger.Fatalf("ingestion failed: %v", err)
	}
}

func serveCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := flags.String("addr", cfg.APIAddr, "address for the HTTP API to listen on")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse serve flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, pgPool := buildService(ctx, cfg, logger)
	defer pgPool.Close()

	server := &http.Server{
		Addr:         *addr,
		Handler:      api.New(service, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Printf("server shutdown: %v", err)
		}
	}()

	logger.Printf("serving HTTP API on %s", *addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("serve: %v", err)
	}
}

func queryCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("query", flag.ExitOnError)
	question := flags.String("question", "", "question to answer against the 2015 archive")
	combined := flags.Bool("combined", false, "generate both answers in a single model call")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse query flags: %v", err)
	}

	if strings.TrimSpace(*question) == "" {
		fmt.Print("Enter your question: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			*question = scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			logger.Fatalf("read question: %v", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, pgPool := buildService(ctx, cfg, logger)
	defer pgPool.Close()

	var standard, grounded string
	var sources []string
	if *combined {
		result := service.GenerateCombined(ctx, *question)
		standard, grounded = result.Standard, result.RAG
		for _, source := range result.Sources {
			sources = append(sources, fmt.Sprintf("%s (%s)", source.Title, source.Source))
		}
	} else {
		standard, _ = service.GenerateStandard(ctx, *question)
		result := service.GenerateRAG(ctx, *question)
		grounded = result.Answer
		for _, source := range result.Sources {
			sources = append(sources, fmt.Sprintf("%s (%s)", source.Title, source.Source))
		}
	}

	fmt.Println("=== Standard answer ===")
	fmt.Println(standard)
	fmt.Println()
	fmt.Println("=== Archive-grounded answer ===")
	fmt.Println(grounded)
	if len(sources) > 0 {
		fmt.Println()
		fmt.Println("Sources:")
		for idx, source := range sources {
			fmt.Printf("%d. %s\n", idx+1, source)
		}
	}
}

func evaluateCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("evaluate", flag.ExitOnError)
	queriesPath := flags.String("queries", cfg.QueriesPath, "path to the test query JSON file")
	resultsPath := flags.String("results", cfg.ResultsPath, "path to write JSONL evaluation results")
	pace := flags.Duration("pace", 5*time.Second, "minimum delay between queries")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse evaluate flags: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, pgPool := buildService(ctx, cfg, logger)
	defer pgPool.Close()

	runner := batch.NewRunner(service, *pace, logger)
	if err := runner.Run(ctx, *queriesPath, *resultsPath); err != nil {
		logger.Fatalf("evaluation run failed: %v", err)
	}
}

func clearCmd(cfg config.Config, logger *log.Logger, args []string) {
	flags := flag.NewFlagSet("clear", flag.ExitOnError)
	confirmed := flags.Bool("confirm", false, "skip confirmation prompt")
	if err := flags.Parse(args); err != nil {
		logger.Fatalf("parse clear flags: %v", err)
	}

	if !*confirmed {
		fmt.Print("This will permanently delete the ingested article corpus from Postgres. Continue? [y/N]: ")
		scanner := bufio.NewScanner(os.Stdin)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Fatalf("read confirmation: %v", err)
			}
			logger.Println("clear aborted")
			return
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if answer != "y" && answer != "yes" {
			logger.Println("clear aborted")
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}
	defer pgPool.Close()

	if _, err := pgPool.Exec(ctx, "TRUNCATE news_chunks, news_articles"); err != nil {
		logger.Fatalf("truncate tables: %v", err)
	}
	logger.Println("cleared news_articles and news_chunks")
}

// buildService opens the shared stores and wires the query pipeline. Any
// failure here is fatal: the process must not serve queries over a
// partially loaded corpus.
func buildService(ctx context.Context, cfg config.Config, logger *log.Logger) (*rag.Service, *pgxpool.Pool) {
	pgPool, err := database.NewPostgresPool(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatalf("postgres connection: %v", err)
	}

	stores, err := store.Open(ctx, pgPool, logger)
	if err != nil {
		logger.Fatalf("load stores: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(cfg)
	if err != nil {
		logger.Fatalf("embedder setup: %v", err)
	}

	model, err := llm.NewClient(cfg)
	if err != nil {
		logger.Fatalf("llm setup: %v", err)
	}

	return rag.NewService(stores, embedder, model, cfg, logger), pgPool
}

func printUsage() {
	fmt.Println("Usage: news-rag <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  fetch     Download 2015 articles from the Guardian content API into a JSONL corpus")
	fmt.Println("  ingest    Chunk, embed, and store a fetched corpus in Postgres")
	fmt.Println("  serve     Run the HTTP query API over the ingested corpus")
	fmt.Println("  query     Answer a single question from the command line")
	fmt.Println("  evaluate  Run the batch evaluation over the test query file")
	fmt.Println("  clear     Remove the ingested corpus from Postgres")
}
