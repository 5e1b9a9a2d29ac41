package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/negah-labs/grounder/internal/adapters/driven/embedding/ollama"
	"github.com/negah-labs/grounder/internal/adapters/driven/embedding/openai"
	"github.com/negah-labs/grounder/internal/adapters/driven/index/flat"
	llmopenai "github.com/negah-labs/grounder/internal/adapters/driven/llm/openai"
	"github.com/negah-labs/grounder/internal/adapters/driven/storage/jsonl"
	"github.com/negah-labs/grounder/internal/adapters/driven/storage/sqlite"
	"github.com/negah-labs/grounder/internal/adapters/driven/tokenizer/tiktoken"
	"github.com/negah-labs/grounder/internal/core/domain"
	"github.com/negah-labs/grounder/internal/core/ports/driven"
	"github.com/negah-labs/grounder/internal/core/services"
	"github.com/negah-labs/grounder/internal/logger"
)

// Default output file names, relative to the working directory.
const (
	defaultIndexFile = "grounder.index"
	defaultMetaFile  = "grounder.meta.jsonl"
)

// configString reads a config key with a fallback.
func configString(key, fallback string) string {
	if v := configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

// configInt reads a config key with a fallback.
func configInt(key string, fallback int) int {
	if v := configStore.GetInt(key); v != 0 {
		return v
	}
	return fallback
}

// resolveIndexPath applies flag > config > default precedence.
func resolveIndexPath() string {
	if indexFlag != "" {
		return indexFlag
	}
	return configString("index.path", defaultIndexFile)
}

// resolveMetaPath applies flag > config > default precedence.
func resolveMetaPath() string {
	if metaFlag != "" {
		return metaFlag
	}
	return configString("index.meta_path", defaultMetaFile)
}

// catalogPath places the build history next to the config file.
func catalogPath() string {
	return filepath.Join(filepath.Dir(configStore.Path()), "builds.db")
}

func newTokenizer() (driven.Tokenizer, error) {
	return tiktoken.New(configString("tokenizer.encoding", tiktoken.DefaultEncoding))
}

// newEmbeddingService builds the configured embedding provider.
func newEmbeddingService() (driven.EmbeddingService, error) {
	provider := configString("embedding.provider", "openai")
	switch provider {
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   configString("embedding.model", openai.DefaultModel),
		})
	case "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    configString("embedding.base_url", ollama.DefaultBaseURL),
			Model:      configString("embedding.model", ollama.DefaultModel),
			Dimensions: configStore.GetInt("embedding.dimensions"),
		})
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfigInvalid, provider)
	}
}

func newLLMService() (driven.LLMService, error) {
	return llmopenai.NewLLMService(llmopenai.LLMConfig{
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		Model:   configString("llm.model", llmopenai.DefaultLLMModel),
	})
}

// buildSettings merges config overrides onto the defaults.
func buildSettings() domain.BuildSettings {
	s := domain.DefaultBuildSettings()
	s.ChunkTokens = configInt("build.chunk_tokens", s.ChunkTokens)
	s.ChunkOverlap = configInt("build.chunk_overlap", s.ChunkOverlap)
	s.EmbedBatchSize = configInt("build.batch_size", s.EmbedBatchSize)
	s.MaxRetries = configInt("build.max_retries", s.MaxRetries)
	if rps := configStore.GetFloat("build.requests_per_second"); rps > 0 {
		s.RequestsPerSecond = rps
	}
	return s
}

func retrievalSettings() domain.RetrievalSettings {
	s := domain.DefaultRetrievalSettings()
	s.Multiplier = configInt("retrieval.multiplier", s.Multiplier)
	s.MaxMultiplier = configInt("retrieval.max_multiplier", s.MaxMultiplier)
	return s
}

func selectionSettings() domain.SelectionSettings {
	s := domain.DefaultSelectionSettings()
	if w := configStore.GetFloat("selection.relevance_weight"); w > 0 {
		s.RelevanceWeight = w
	}
	if w := configStore.GetFloat("selection.diversity_weight"); w > 0 {
		s.DiversityWeight = w
	}
	return s
}

// newBuilder wires the full build pipeline. The returned cleanup closes
// the embedding service and the catalog.
func newBuilder() (*services.Builder, func(), error) {
	tokenizer, err := newTokenizer()
	if err != nil {
		return nil, nil, err
	}
	embedding, err := newEmbeddingService()
	if err != nil {
		return nil, nil, err
	}

	var opts []services.BuilderOption
	catalog, err := sqlite.NewCatalog(catalogPath())
	if err != nil {
		// Builds still work without history.
		logger.Warn("build catalog unavailable: %v", err)
		catalog = nil
	} else {
		opts = append(opts, services.WithCatalog(catalog))
	}

	factory := func(dims int) (driven.VectorIndex, error) {
		return flat.New(dims)
	}

	builder, err := services.NewBuilder(tokenizer, embedding, jsonl.New(), factory, buildSettings(), opts...)
	if err != nil {
		embedding.Close()
		if catalog != nil {
			catalog.Close()
		}
		return nil, nil, err
	}

	cleanup := func() {
		embedding.Close()
		if catalog != nil {
			catalog.Close()
		}
	}
	return builder, cleanup, nil
}

// loadRetriever opens the index/metadata pair and wires a retriever.
// The query embedding runs through the retrying embedder.
func loadRetriever() (*services.Retriever, func(), error) {
	embedding, err := newEmbeddingService()
	if err != nil {
		return nil, nil, err
	}
	embedder, err := services.NewEmbedder(embedding, buildSettings())
	if err != nil {
		embedding.Close()
		return nil, nil, err
	}

	idx, err := flat.Load(resolveIndexPath())
	if err != nil {
		embedding.Close()
		return nil, nil, err
	}
	meta, err := jsonl.New().Read(resolveMetaPath())
	if err != nil {
		embedding.Close()
		return nil, nil, err
	}

	retriever, err := services.NewRetriever(embedder, idx, meta, retrievalSettings())
	if err != nil {
		embedding.Close()
		return nil, nil, err
	}

	cleanup := func() { embedding.Close() }
	return retriever, cleanup, nil
}

// newSelector wires the selector with any configured extra variants.
func newSelector() (*services.Selector, error) {
	var opts []services.SelectorOption
	if extra := configStore.GetStringSlice("selection.variants"); len(extra) > 0 {
		opts = append(opts, services.WithExtraVariants(extra))
	}
	return services.NewSelector(selectionSettings(), opts...)
}
