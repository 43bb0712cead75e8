package rampup

import (
	"fmt"
	"log"

	"rampup/config"
	"rampup/docsource/github"
	"rampup/llm"
	"rampup/notify"
	slackNotify "rampup/notify/slack"
	"rampup/repair"
	sqliteStore "rampup/store/sqlite"
)

// applyDefaults fills in missing fields on the builder with sensible defaults.
func applyDefaults(b *Builder) error {
	if b.config == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading configuration: %w", err)
		}
		b.config = cfg
	}

	// Store.
	if b.store == nil {
		st, err := sqliteStore.New(b.config.DatabasePath)
		if err != nil {
			return fmt.Errorf("initializing store: %w", err)
		}
		b.store = st
	}

	// LLM backend. Nil is a valid state: generation falls back to templates.
	if !b.llmSet {
		if b.config.AIEnabled() {
			b.llm = llm.NewTogetherClient(b.config.TogetherAPIKey, b.config.TogetherModel)
			log.Println("AI plan generation enabled (Together AI)")
		} else {
			log.Println("AI plan generation disabled (no TOGETHER_API_KEY, using templates)")
		}
	}

	// Approval announcements.
	if b.notifier == nil {
		if b.config.SlackEnabled() {
			b.notifier = slackNotify.New(b.config.SlackBotToken, b.config.SlackChannel)
			log.Println("Slack announcements enabled")
		} else {
			b.notifier = notify.Nop{}
		}
	}

	// GitHub documentation importer.
	if b.importer == nil {
		b.importer = github.NewImporter(b.config.GitHubToken)
	}

	// Repair tier observer.
	if b.reporter == nil {
		b.reporter = repair.LogReporter{}
	}

	return nil
}
