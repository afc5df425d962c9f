package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/tallvaxt/floraquiz/internal/errors"
	"github.com/tallvaxt/floraquiz/internal/model"
)

// ProcessFile enriches one input artifact and writes the result to
// outputPath. The output has the same cardinality and order as the input and
// is written once, at the end of the file's processing. Read and write
// failures are fatal; per-record failures are not.
func (p *Processor) ProcessFile(ctx context.Context, inputPath, outputPath string, opts Options) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return errors.Newf("failed to read input file: %w", err).
			Category(errors.CategoryFileIO).
			Context("path", inputPath).
			Component("pipeline").
			Build()
	}

	var records []model.PlantRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return errors.Newf("failed to parse input file: %w", err).
			Category(errors.CategoryFileParsing).
			Context("path", inputPath).
			Component("pipeline").
			Build()
	}

	p.logger.Info("Processing file", "path", inputPath, "records", len(records))

	enriched, err := p.ProcessRecords(ctx, records, opts)
	if err != nil {
		return err
	}

	output, err := json.MarshalIndent(enriched, "", "  ")
	if err != nil {
		return errors.Newf("failed to marshal output: %w", err).
			Category(errors.CategoryFileParsing).
			Context("path", outputPath).
			Component("pipeline").
			Build()
	}

	if err := os.WriteFile(outputPath, output, 0o644); err != nil {
		return errors.Newf("failed to write output file: %w", err).
			Category(errors.CategoryFileIO).
			Context("path", outputPath).
			Component("pipeline").
			Build()
	}

	p.logger.Info("Wrote enriched records", "path", outputPath, "records", len(enriched))
	return nil
}

// ProcessDirectory enriches every artifact in inputDir matching pattern,
// writing same-named files into outputDir. Files are processed in sorted
// order. A crash mid-batch loses at most the file being processed; completed
// files are untouched.
func (p *Processor) ProcessDirectory(ctx context.Context, inputDir, outputDir, pattern string, opts Options) error {
	matches, err := filepath.Glob(filepath.Join(inputDir, pattern))
	if err != nil {
		return errors.Newf("invalid file pattern: %w", err).
			Category(errors.CategoryValidation).
			Context("pattern", pattern).
			Component("pipeline").
			Build()
	}
	if len(matches) == 0 {
		return errors.Newf("no files matching %q in %s", pattern, inputDir).
			Category(errors.CategoryNotFound).
			Context("input_dir", inputDir).
			Component("pipeline").
			Build()
	}
	sort.Strings(matches)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return errors.Newf("failed to create output directory: %w", err).
			Category(errors.CategoryFileIO).
			Context("path", outputDir).
			Component("pipeline").
			Build()
	}

	for _, inputPath := range matches {
		outputPath := filepath.Join(outputDir, filepath.Base(inputPath))
		if err := p.ProcessFile(ctx, inputPath, outputPath, opts); err != nil {
			return err
		}
	}

	return nil
}
