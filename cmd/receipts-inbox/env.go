package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/receipts-inbox/internal/category"
	"github.com/joseph-ayodele/receipts-inbox/internal/common"
	"github.com/joseph-ayodele/receipts-inbox/internal/intake"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm/anthropic"
	"github.com/joseph-ayodele/receipts-inbox/internal/llm/openai"
	"github.com/joseph-ayodele/receipts-inbox/internal/ocr"
	"github.com/joseph-ayodele/receipts-inbox/internal/pipeline"
	"github.com/joseph-ayodele/receipts-inbox/internal/processor"
	"github.com/joseph-ayodele/receipts-inbox/internal/repository"
)

// appEnv holds everything the commands share. Callers should defer Close.
type appEnv struct {
	Pipeline  *pipeline.Pipeline
	Processor *processor.Processor
	closers   []func()
}

func (e *appEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// initEnv wires the pipeline from cfg. withSink attaches the configured store
// (and Redis de-duplication when redis.addr is set).
func initEnv(ctx context.Context, withSink bool) (*appEnv, error) {
	env := &appEnv{}

	tax, err := loadTaxonomy(cfg.Category)
	if err != nil {
		return nil, err
	}

	var model pipeline.ModelExtractor
	completer, err := newCompleter(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	if completer != nil {
		m, err := llm.NewModelExtractor(llm.NewRateLimited(completer, cfg.LLM.RPS), cfg.LLM.MaxInputChars, logger)
		if err != nil {
			return nil, err
		}
		model = m
	}

	env.Pipeline = pipeline.New(pipeline.Config{
		LowValueThreshold: cfg.Pipeline.LowValueThreshold,
		ModelTimeout:      cfg.LLM.Timeout,
	}, model, tax, logger)

	in := intake.New(ocr.NewService(ocr.Config{}, logger), cfg.Pipeline.LowValueThreshold, logger)

	var sink repository.ReceiptSink
	if withSink {
		if sink, err = initSink(ctx, env); err != nil {
			env.Close()
			return nil, err
		}
	}

	env.Processor = processor.New(in, env.Pipeline, sink, logger)
	return env, nil
}

func loadTaxonomy(c common.CategoryConfig) (*category.Taxonomy, error) {
	if c.KeywordsFile == "" {
		return category.Default(), nil
	}
	tax, err := category.LoadFile(c.KeywordsFile)
	if err != nil {
		return nil, err
	}
	logger.Info("category.taxonomy.loaded", zap.String("file", c.KeywordsFile))
	return tax, nil
}

// newCompleter returns nil when the model backend is disabled.
func newCompleter(c common.LLMConfig, logger *zap.Logger) (llm.Completer, error) {
	switch c.Provider {
	case "none", "":
		logger.Info("llm.disabled")
		return nil, nil
	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      c.APIKey,
			BaseURL:     c.BaseURL,
			Model:       c.Model,
			Temperature: c.Temperature,
			MaxTokens:   c.MaxTokens,
			Timeout:     c.Timeout,
		}, logger), nil
	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKey:      c.APIKey,
			BaseURL:     c.BaseURL,
			Model:       c.Model,
			Temperature: c.Temperature,
			MaxTokens:   c.MaxTokens,
			Timeout:     c.Timeout,
		}, logger), nil
	default:
		return nil, eris.Errorf("unknown llm provider %q", c.Provider)
	}
}

func initSink(ctx context.Context, env *appEnv) (repository.ReceiptSink, error) {
	var sink repository.ReceiptSink
	switch cfg.Store.Driver {
	case "none", "":
		return nil, nil
	case "postgres":
		pool, err := repository.Open(ctx, repository.ConfigFrom(cfg.Store), logger)
		if err != nil {
			return nil, err
		}
		pg := repository.NewPostgresSink(pool, logger)
		env.closers = append(env.closers, pg.Close)
		if err := pg.Migrate(ctx); err != nil {
			return nil, err
		}
		sink = pg
	case "sqlite":
		lite, err := repository.NewSQLiteSink(ctx, cfg.Store.DSN, logger)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, func() { _ = lite.Close() })
		sink = lite
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Redis.Addr != "" {
		rdb := repository.NewRedisClient(cfg.Redis)
		env.closers = append(env.closers, func() { _ = rdb.Close() })
		sink = repository.NewDeduper(sink, rdb, cfg.Redis.DedupTTL, logger)
		logger.Info("sink.dedup.enabled", zap.String("addr", cfg.Redis.Addr))
	}
	return sink, nil
}
