package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/quizbank/quizbank-cli/internal/pdftext"
	"github.com/quizbank/quizbank-cli/internal/pipeline"
	"github.com/quizbank/quizbank-cli/internal/store"
)

// env bundles the shared dependencies of the import, parse and serve
// commands.
type env struct {
	Store     store.Store
	Extractor pdftext.Extractor
	Parser    *pipeline.Parser
}

// initEnv wires the store, PDF extractor and question parser from config.
// withStore is false for commands that only print to stdout.
func initEnv(ctx context.Context, withStore, withLLM bool) (*env, error) {
	e := &env{
		Extractor: pdftext.NewExtractor(cfg.PDF),
	}

	var completer pipeline.Completer
	if withLLM {
		c, err := pipeline.NewCompleter(cfg)
		if err != nil {
			return nil, err
		}
		completer = c
	}
	if completer == nil {
		zap.L().Info("llm parsing disabled, using rule-based parser only")
	}
	e.Parser = pipeline.NewParser(completer, cfg.LLM.MaxInputChars)

	if withStore {
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return nil, eris.Wrap(err, "open store")
		}
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		e.Store = st
	}

	return e, nil
}

func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}
