package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/negah-labs/grounder/internal/chunker"
	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
	"github.com/negah-labs/grounder/internal/core/ports/driving"
	"github.com/negah-labs/grounder/internal/logger"
	"github.com/negah-labs/grounder/internal/sections"
)

var _ driving.BuildService = (*Builder)(nil)

// IndexFactory creates an empty vector index of the given dimension.
type IndexFactory func(dimensions int) (driven.VectorIndex, error)

// Builder runs the full corpus-to-index pipeline: split documents into
// sections, chunk section text into token windows, embed the chunk
// texts, and persist the index blob plus its metadata file.
type Builder struct {
	tokenizer driven.Tokenizer
	embedding driven.EmbeddingService
	embedder  *Embedder
	meta      driven.MetadataStore
	newIndex  IndexFactory
	splitter  *sections.Splitter
	chunker   *chunker.Chunker
	catalog   driven.BuildCatalog
}

// BuilderOption configures optional builder collaborators.
type BuilderOption func(*Builder)

// WithCatalog records each completed build in the given catalog.
func WithCatalog(catalog driven.BuildCatalog) BuilderOption {
	return func(b *Builder) {
		b.catalog = catalog
	}
}

// NewBuilder wires the pipeline. The splitter, chunker, and batch
// embedder are constructed internally from the tokenizer, embedding
// service, and settings.
func NewBuilder(
	tokenizer driven.Tokenizer,
	embedding driven.EmbeddingService,
	meta driven.MetadataStore,
	newIndex IndexFactory,
	settings domain.BuildSettings,
	opts ...BuilderOption,
) (*Builder, error) {
	embedder, err := NewEmbedder(embedding, settings)
	if err != nil {
		return nil, err
	}

	b := &Builder{
		tokenizer: tokenizer,
		embedding: embedding,
		embedder:  embedder,
		meta:      meta,
		newIndex:  newIndex,
		splitter:  sections.New(tokenizer),
		chunker: chunker.New(tokenizer,
			chunker.WithTarget(settings.ChunkTokens),
			chunker.WithOverlap(settings.ChunkOverlap)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build processes every .html/.htm file under inputDir in sorted name
// order and writes the index blob and metadata file. A document that
// cannot be read or parsed is logged and skipped; an empty corpus is an
// error.
func (b *Builder) Build(ctx context.Context, inputDir, indexPath, metaPath string) (*domain.BuildInfo, error) {
	logger.Section("build index")

	files, err := corpusFiles(inputDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no .html or .htm files in %s", domain.ErrEmptyCorpus, inputDir)
	}

	records, documents := b.collectChunks(inputDir, files)
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: corpus in %s produced no chunks", domain.ErrEmptyCorpus, inputDir)
	}
	logger.Info("collected %d chunks from %d documents", len(records), documents)

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.Text
	}
	vectors, err := b.embedder.EmbedAll(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}

	idx, err := b.newIndex(b.embedding.Dimensions())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	for i, v := range vectors {
		if err := idx.Append(v); err != nil {
			return nil, fmt.Errorf("index chunk %d: %w", i, err)
		}
	}

	if err := idx.Save(indexPath); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}
	if err := b.meta.Write(metaPath, records); err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}

	info := &domain.BuildInfo{
		ID:         uuid.NewString(),
		InputDir:   inputDir,
		IndexPath:  indexPath,
		MetaPath:   metaPath,
		Model:      b.embedding.ModelName(),
		Dimensions: b.embedding.Dimensions(),
		Documents:  documents,
		Chunks:     len(records),
		CreatedAt:  time.Now().UTC(),
	}

	if b.catalog != nil {
		if err := b.catalog.Record(ctx, *info); err != nil {
			logger.Warn("build succeeded but was not recorded in the catalog: %v", err)
		}
	}

	logger.Info("build %s complete: %d chunks, %d dimensions", info.ID, info.Chunks, info.Dimensions)
	return info, nil
}

// collectChunks turns documents into ordered chunk records with dense
// ids. Per-document failures are skipped, never fatal. DocumentIndex is
// the file's position in the sorted listing, so ordinals stay stable
// when a bad file is skipped.
func (b *Builder) collectChunks(inputDir string, files []string) ([]domain.ChunkRecord, int) {
	var records []domain.ChunkRecord
	documents := 0

	for docIndex, name := range files {
		raw, err := os.ReadFile(filepath.Join(inputDir, name))
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			continue
		}

		secs, err := b.splitter.Split(raw)
		if err != nil {
			logger.Warn("skipping %s: %v", name, err)
			continue
		}

		documents++

		for si, sec := range secs {
			if strings.TrimSpace(sec.Text) == "" {
				continue
			}

			tokens := b.tokenizer.Encode(sec.Text)
			windows := b.chunker.Chunk(tokens)
			if len(windows) == 0 {
				// Non-empty text the tokenizer mapped to no tokens;
				// keep the section as one whole-text chunk with a
				// nominal one-token range.
				windows = []chunker.Window{{Start: 0, End: 1, Text: sec.Text}}
			}

			for ci, w := range windows {
				records = append(records, domain.ChunkRecord{
					ID:             len(records),
					SourceDocument: name,
					DocumentIndex:  docIndex,
					SectionIndex:   si,
					SectionTitle:   sec.Title,
					ChunkIndex:     ci,
					StartToken:     w.Start,
					EndToken:       w.End,
					Text:           w.Text,
				})
			}
		}

		logger.Debug("processed %s: %d sections", name, len(secs))
	}

	return records, documents
}

// corpusFiles lists the .html/.htm file names in dir, sorted by name.
func corpusFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("corpus directory %s: %w", dir, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isCorpusFile(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func isCorpusFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm":
		return true
	default:
		return false
	}
}
