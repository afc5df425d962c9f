// Package pipeline drives the batch enrichment of plant records.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/tallvaxt/floraquiz/internal/botanical"
	"github.com/tallvaxt/floraquiz/internal/logging"
	"github.com/tallvaxt/floraquiz/internal/model"
)

// Resolver resolves a cleaned Latin name against a taxonomy authority.
// Implementations never fail hard; unresolved names come back as a
// HasMatch=false sentinel.
type Resolver interface {
	Resolve(ctx context.Context, name string) model.Resolution
}

// PhotoFetcher aggregates reference and observation photos for a search name.
// Implementations return partial pools on failure, empty at worst.
type PhotoFetcher interface {
	FetchPhotos(ctx context.Context, searchName string) model.PhotoSet
}

// Options controls which enrichment stages run for a batch.
type Options struct {
	EnableTaxonomy bool
	EnablePhotos   bool

	// PreferAcceptedForSynonyms selects the accepted name as the photo search
	// name when a true synonym was found. Rank-notation differences are not
	// synonymy and keep the cleaned name either way.
	PreferAcceptedForSynonyms bool
}

// DefaultOptions enables all stages with the synonym preference on.
func DefaultOptions() Options {
	return Options{
		EnableTaxonomy:            true,
		EnablePhotos:              true,
		PreferAcceptedForSynonyms: true,
	}
}

// Processor enriches batches of plant records strictly sequentially. Both
// remote services are rate-limited, so a fixed delay is awaited after every
// remote call, not just between records.
type Processor struct {
	resolver Resolver
	photos   PhotoFetcher
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// New creates a Processor. callDelay is the fixed inter-call delay inserted
// after each remote call.
func New(resolver Resolver, photos PhotoFetcher, callDelay time.Duration) *Processor {
	if callDelay <= 0 {
		callDelay = 500 * time.Millisecond
	}

	logger := logging.ForService("pipeline")
	if logger == nil {
		logger = slog.Default().With("service", "pipeline")
	}

	// The bucket starts full; drain it so the wait after the very first
	// remote call blocks for the full delay too.
	limiter := rate.NewLimiter(rate.Every(callDelay), 1)
	limiter.Allow()

	return &Processor{
		resolver: resolver,
		photos:   photos,
		limiter:  limiter,
		logger:   logger,
	}
}

// ProcessRecords enriches records in input order, one output record per input
// record. A failure inside a single record's processing never aborts the
// batch; the record's fields fall back to their fail-open defaults. Only
// context cancellation aborts the run, returning the records completed so far.
func (p *Processor) ProcessRecords(ctx context.Context, records []model.PlantRecord, opts Options) ([]model.EnrichedPlantRecord, error) {
	enriched := make([]model.EnrichedPlantRecord, 0, len(records))

	for i := range records {
		record := &records[i]
		p.logger.Info("Processing record",
			"index", i+1,
			"total", len(records),
			"latin_name", record.LatinName)

		result, err := p.processRecord(ctx, record, opts)
		if err != nil {
			return enriched, err
		}
		enriched = append(enriched, *result)
	}

	return enriched, nil
}

// processRecord runs the enrichment stages for one record.
func (p *Processor) processRecord(ctx context.Context, record *model.PlantRecord, opts Options) (*model.EnrichedPlantRecord, error) {
	cleaned := botanical.CleanLatinName(record.LatinName)

	var resolution *model.Resolution
	if opts.EnableTaxonomy {
		r := p.resolver.Resolve(ctx, cleaned)
		resolution = &r
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		if !r.HasMatch {
			p.logger.Warn("No taxonomy match found",
				"latin_name", record.LatinName,
				"cleaned_name", cleaned)
		}
	}

	searchName := cleaned
	if opts.PreferAcceptedForSynonyms && resolution != nil && resolution.IsSynonym && resolution.AcceptedName != "" {
		// A real synonym: the accepted name searches better against the
		// observation service.
		searchName = resolution.AcceptedName
	}

	if searchName != record.LatinName {
		p.logger.Info("Search name differs from input",
			"latin_name", record.LatinName,
			"search_name", searchName)
	}

	enriched := &model.EnrichedPlantRecord{
		SwedishName: record.SwedishName,
		LatinName:   record.LatinName,
		SearchName:  searchName,
		WFOData:     resolution,
	}

	if opts.EnablePhotos {
		photos := p.photos.FetchPhotos(ctx, searchName)
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		enriched.TaxonPhotos = photos.TaxonPhotos
		enriched.ObservationPhotos = photos.ObservationPhotos

		p.logger.Info("Photos aggregated",
			"latin_name", record.LatinName,
			"taxon_photos", len(photos.TaxonPhotos),
			"observation_photos", len(photos.ObservationPhotos))
		if len(photos.TaxonPhotos) == 0 && len(photos.ObservationPhotos) == 0 {
			p.logger.Warn("No photos found",
				"latin_name", record.LatinName,
				"search_name", searchName)
		}
	}

	return enriched, nil
}
