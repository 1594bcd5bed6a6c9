package service

import (
	"context"
	"fmt"
	"log"

	"github.com/personascope/personascope/pkg/domain"
)

// Scraper fetches normalized content items for a profile
type Scraper interface {
	ScrapeProfile(ctx context.Context, profileURL string, maxPosts int) ([]domain.ContentItem, error)
}

// Generator produces a persona from content items
type Generator interface {
	Generate(ctx context.Context, items []domain.ContentItem) (domain.Persona, error)
}

// ReportWriter renders a persona to a report file
type ReportWriter interface {
	Write(persona domain.Persona, username string) (string, error)
}

// PersonaStore archives generated personas
type PersonaStore interface {
	Save(ctx context.Context, rec *domain.PersonaRecord) error
}

// Processor runs the pipeline for one profile at a time: scrape, generate,
// write report, archive. Strictly sequential, no state is kept between
// profiles.
type Processor struct {
	scraper   Scraper
	generator Generator
	writer    ReportWriter
	store     PersonaStore
	maxPosts  int
	model     string
}

// NewProcessor creates a processor from its collaborators
func NewProcessor(scraper Scraper, generator Generator, writer ReportWriter, store PersonaStore, maxPosts int, model string) *Processor {
	return &Processor{
		scraper:   scraper,
		generator: generator,
		writer:    writer,
		store:     store,
		maxPosts:  maxPosts,
		model:     model,
	}
}

// ProcessProfile handles a single profile end to end and returns the path of
// the written report. Any returned error aborts this profile only, callers
// continue with the next one.
func (p *Processor) ProcessProfile(ctx context.Context, profileURL, username string) (string, error) {
	items, err := p.scraper.ScrapeProfile(ctx, profileURL, p.maxPosts)
	if err != nil {
		return "", fmt.Errorf("scrape %s: %w", profileURL, err)
	}
	if len(items) == 0 {
		return "", fmt.Errorf("no content items found for %s", username)
	}
	log.Printf("[INFO] found %d posts/comments for %s", len(items), username)

	persona, err := p.generator.Generate(ctx, items)
	if err != nil {
		return "", fmt.Errorf("generate persona for %s: %w", username, err)
	}

	path, err := p.writer.Write(persona, username)
	if err != nil {
		return "", fmt.Errorf("write report for %s: %w", username, err)
	}

	// archiving is best-effort, the report is already on disk
	if p.store != nil {
		rec := &domain.PersonaRecord{
			Username:   username,
			ProfileURL: profileURL,
			Persona:    persona,
			ReportPath: path,
			ItemCount:  len(items),
			Model:      p.model,
		}
		if err := p.store.Save(ctx, rec); err != nil {
			log.Printf("[ERROR] failed to archive persona for %s: %v", username, err)
		}
	}

	return path, nil
}
