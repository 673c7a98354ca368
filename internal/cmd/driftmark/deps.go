package driftmark

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mverett/driftmark/internal/game/content"
	"github.com/mverett/driftmark/internal/game/diagnostics"
	"github.com/mverett/driftmark/internal/game/engine"
	"github.com/mverett/driftmark/internal/game/storage/sqlite"
)

// deps bundles the CLI runtime built from configuration.
type deps struct {
	registries engine.Registries
	library    *content.Library
	store      *sqlite.Store
	handler    *engine.Handler
}

// buildDeps opens the journal, loads content, and wires the handler.
func buildDeps(cfg *Config, logger *slog.Logger) (*deps, error) {
	registries, err := engine.BuildRegistries()
	if err != nil {
		return nil, fmt.Errorf("build registries: %w", err)
	}
	library, err := content.Load(os.DirFS(cfg.ContentDir))
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	store, err := sqlite.Open(cfg.DBPath, registries.Events)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	handler := &engine.Handler{
		Commands:    registries.Commands,
		Events:      registries.Events,
		Journal:     store,
		Content:     library,
		Checkpoints: store,
		Logger:      logger,
		Diagnostics: diagnostics.NewRecorder(logger, diagnostics.DefaultCapacity),
	}
	quests, cards, factions, graphs := library.Counts()
	logger.Info("content loaded",
		"quests", quests,
		"cards", cards,
		"factions", factions,
		"graphs", graphs,
	)
	return &deps{
		registries: registries,
		library:    library,
		store:      store,
		handler:    handler,
	}, nil
}

// close releases journal resources.
func (d *deps) close() {
	if d == nil {
		return
	}
	_ = d.store.Close()
}
