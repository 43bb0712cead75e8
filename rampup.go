// Package rampup is the top-level entry point for the rampup server.
//
// Use the Builder to compose an application:
//
//	app, err := rampup.NewBuilder().Build()
//	app.Start(ctx)
//
// Or customize components:
//
//	app, err := rampup.NewBuilder().
//	    WithStore(myStore).
//	    WithLLM(myClient).
//	    Build()
package rampup

import (
	"context"
	"log"
	"net/http"
	"time"

	"rampup/config"
	"rampup/docsource/github"
	"rampup/draft"
	"rampup/httpapi"
	"rampup/llm"
	"rampup/notify"
	"rampup/planner"
	"rampup/repair"
	"rampup/store"
)

// Builder constructs a rampup App.
type Builder struct {
	config   *config.Config
	store    store.Store
	llm      llm.Client
	llmSet   bool
	notifier notify.Notifier
	importer *github.Importer
	reporter repair.Reporter
}

// NewBuilder creates a new Builder with sensible defaults.
func NewBuilder() *Builder {
	return &Builder{}
}

// WithConfig sets the application configuration.
func (b *Builder) WithConfig(cfg *config.Config) *Builder {
	b.config = cfg
	return b
}

// WithStore sets the persistent store implementation.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithLLM sets the LLM client used for plan generation. Passing nil pins the
// app to template-based generation.
func (b *Builder) WithLLM(client llm.Client) *Builder {
	b.llm = client
	b.llmSet = true
	return b
}

// WithNotifier sets the channel approval announcements go to.
func (b *Builder) WithNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

// WithRepairReporter sets the observer for output repair tier outcomes.
func (b *Builder) WithRepairReporter(rep repair.Reporter) *Builder {
	b.reporter = rep
	return b
}

// Build creates the App. Missing components are filled with defaults.
func (b *Builder) Build() (*App, error) {
	if err := applyDefaults(b); err != nil {
		return nil, err
	}

	gen := planner.New(b.llm, b.reporter)
	drafts := draft.NewManager(b.store)
	server := httpapi.New(b.store, gen, drafts, b.notifier)
	if b.importer != nil {
		server.SetImporter(b.importer)
	}

	return &App{
		config:   b.config,
		store:    b.store,
		planner:  gen,
		drafts:   drafts,
		importer: b.importer,
		handler:  server.Handler(),
	}, nil
}

// App is a running rampup application.
type App struct {
	config   *config.Config
	store    store.Store
	planner  *planner.Generator
	drafts   *draft.Manager
	importer *github.Importer
	handler  http.Handler
}

// Store returns the underlying store for direct access.
func (a *App) Store() store.Store { return a.store }

// Planner returns the plan generator for direct access.
func (a *App) Planner() *planner.Generator { return a.planner }

// Drafts returns the draft manager for direct access.
func (a *App) Drafts() *draft.Manager { return a.drafts }

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler { return a.handler }

// ImportGitHubDocs fetches documentation from a GitHub repository and stores
// it under the project. Returns how many documents were imported.
func (a *App) ImportGitHubDocs(ctx context.Context, projectID int64, repo, uploadedBy string) (int, error) {
	docs, err := a.importer.ImportDocs(ctx, projectID, repo, uploadedBy)
	if err != nil {
		return 0, err
	}
	imported := 0
	for _, d := range docs {
		d.CreatedAt = time.Now().UTC()
		if err := a.store.CreateDocument(d); err != nil {
			log.Printf("Error storing imported document %q: %v", d.Title, err)
			continue
		}
		imported++
	}
	return imported, nil
}

// Start starts the HTTP server. Blocks until ctx is done.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.config.ServerAddr,
		Handler: a.handler,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("rampup server listening on %s", a.config.ServerAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return a.store.Close()
}
