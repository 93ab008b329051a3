package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"ai_content_generator/artifact"
	"ai_content_generator/config"
	"ai_content_generator/errs"
	"ai_content_generator/generator"
	"ai_content_generator/logger"
	"ai_content_generator/server"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config.yaml")
	topic := flag.String("topic", "", "content topic")
	keywords := flag.String("keywords", "", "SEO keywords, comma separated")
	description := flag.String("description", "", "additional context for the writer")
	words := flag.Int("words", 0, "target word count (0 uses the configured default)")
	tone := flag.String("tone", string(generator.ToneProfessional), "writing tone")
	audience := flag.String("audience", string(generator.AudienceIntermediate), "target audience")
	contentType := flag.String("type", string(generator.ContentBlogPost), "content type")
	outDir := flag.String("out", ".", "directory for the downloaded artifact")
	format := flag.String("format", "md", "artifact format: md or html")
	serve := flag.Bool("serve", false, "start web server")
	addr := flag.String("addr", "", "http listen address when --serve (overrides server.addr)")
	flag.Parse()

	// .env is optional.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	agent, err := buildAgent(cfg)
	if err != nil {
		logger.Fatal(ctx, "build generator", err)
	}

	if *serve {
		if *addr != "" {
			cfg.Server.Addr = *addr
		}
		if err := runServer(ctx, cfg, agent); err != nil {
			logger.Fatal(ctx, "server stopped", err)
		}
		return
	}

	req, err := cliRequest(cfg, *topic, *keywords, *description, *words, *tone, *audience, *contentType)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	artFormat, err := artifact.ParseFormat(*format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	path, err := runOnce(ctx, agent, req, artFormat, *outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errs.IsValidation(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	logger.Info(ctx, "artifact written", "path", path)
	fmt.Fprintln(os.Stderr, path)
}

func buildAgent(cfg *config.Config) (*generator.Agent, error) {
	llm, err := generator.NewLLM(&generator.LLMSettings{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.ResolveAPIKey(),
		BaseURL:  cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, strings.ToLower(cfg.LLM.Provider))
}

func wordRange(cfg *config.Config) generator.WordRange {
	return generator.WordRange{
		Min:     cfg.Content.MinWords,
		Max:     cfg.Content.MaxWords,
		Step:    cfg.Content.WordStep,
		Default: cfg.Content.DefaultWords,
	}
}

func cliRequest(cfg *config.Config, topic, keywords, description string, words int, tone, audience, contentType string) (generator.ContentRequest, error) {
	t, err := generator.ParseTone(tone)
	if err != nil {
		return generator.ContentRequest{}, err
	}
	a, err := generator.ParseAudience(audience)
	if err != nil {
		return generator.ContentRequest{}, err
	}
	ct, err := generator.ParseContentType(contentType)
	if err != nil {
		return generator.ContentRequest{}, err
	}
	return generator.ContentRequest{
		Topic:       topic,
		Keywords:    keywords,
		Description: strings.TrimSpace(description),
		WordCount:   wordRange(cfg).Clamp(words),
		Tone:        t,
		Audience:    a,
		ContentType: ct,
	}, nil
}

// runOnce streams one generation to stdout and writes the artifact to outDir.
func runOnce(ctx context.Context, agent *generator.Agent, req generator.ContentRequest, format artifact.Format, outDir string) (string, error) {
	sess := generator.NewSession("cli", agent)
	ctx = logger.WithContext(ctx, logger.SessionIDKey, sess.ID)

	printed := 0
	res, err := sess.Run(ctx, req, func(partial string) {
		fmt.Print(partial[printed:])
		printed = len(partial)
	})
	if printed > 0 {
		fmt.Println()
	}
	if err != nil {
		return "", err
	}

	a, err := artifact.New(res, format)
	if err != nil {
		return "", err
	}
	return artifact.WriteFile(outDir, a)
}

func runServer(ctx context.Context, cfg *config.Config, agent *generator.Agent) error {
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}
	srv, err := server.New(agent, server.Options{
		WordRange:      wordRange(cfg),
		MetricsPath:    metricsPath,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     srv.Routes(),
		ReadTimeout: cfg.Server.ReadTimeout,
		IdleTimeout: cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info(gctx, "starting web server", "addr", cfg.Server.Addr, "provider", cfg.LLM.Provider)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info(shutdownCtx, "shutting down web server")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
