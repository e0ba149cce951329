package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"sop-agent/internal/embedding"
	"sop-agent/internal/models"
	"sop-agent/internal/parser"
)

// ErrNoDocuments is returned on a cold build when the documents
// directory yields zero chunks.
var ErrNoDocuments = errors.New("no PDF documents found: add at least one SOP PDF to the documents directory")

const (
	collectionName = "sop_documents"
	compress       = false
)

// buildMu serializes build-and-persist so concurrent callers never see
// a partially written index.
var buildMu sync.Mutex

// Options configures GetOrBuild.
type Options struct {
	DocsDir      string
	StorageDir   string
	ChunkSize    int
	ChunkOverlap int
	// Embedding vectorizes queries and, during a build, chunks.
	Embedding chromem.EmbeddingFunc
}

// Index wraps a chromem-go persistent collection of SOP chunks.
type Index struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// GetOrBuild loads the index persisted under StorageDir, or builds it
// from the PDFs in DocsDir when none is loadable. Load failures are
// recovered by rebuilding; a failed build leaves no partial index
// behind. Repeated calls against a valid store return the persisted
// index without rebuilding.
func GetOrBuild(ctx context.Context, opts Options) (*Index, error) {
	buildMu.Lock()
	defer buildMu.Unlock()

	db, err := openDB(opts.StorageDir)
	if err != nil {
		return nil, err
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, opts.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	idx := &Index{db: db, collection: collection}
	if collection.Count() > 0 {
		log.Debug().Int("documents", collection.Count()).Msg("Loaded persisted index")
		return idx, nil
	}

	if err := idx.build(ctx, opts); err != nil {
		return nil, err
	}
	return idx, nil
}

// openDB opens the persistent store, treating an unreadable state as
// "no index present": the directory is removed and recreated fresh.
func openDB(storageDir string) (*chromem.DB, error) {
	db, err := chromem.NewPersistentDB(storageDir, compress)
	if err == nil {
		return db, nil
	}
	log.Warn().Err(err).Str("storage", storageDir).Msg("Persisted index unreadable, rebuilding")

	if err := os.RemoveAll(storageDir); err != nil {
		return nil, fmt.Errorf("failed to clear storage directory: %w", err)
	}
	db, err = chromem.NewPersistentDB(storageDir, compress)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}
	return db, nil
}

// build parses, embeds and persists all documents. On any failure the
// collection is deleted so callers never observe a half-built index.
func (idx *Index) build(ctx context.Context, opts Options) error {
	p := parser.New(opts.ChunkSize, opts.ChunkOverlap)
	chunks, err := p.ParseDir(opts.DocsDir)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return ErrNoDocuments
	}

	log.Info().Int("chunks", len(chunks)).Str("docs", opts.DocsDir).Msg("Building index")

	// Builds embed whole documents in bursts; smooth over rate limits.
	// Query-time embedding stays single-shot.
	embedFn := embedding.WithRetry(opts.Embedding)

	docs := make([]chromem.Document, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := embedFn(ctx, chunk.Content)
		if err != nil {
			idx.discard()
			return fmt.Errorf("failed to generate embedding: %w", err)
		}
		docs = append(docs, chromem.Document{
			ID:        uuid.NewString(),
			Content:   chunk.Content,
			Metadata:  chunkMetadata(chunk),
			Embedding: vector,
		})
	}

	if err := idx.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		idx.discard()
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

// discard removes the collection after a failed build.
func (idx *Index) discard() {
	if err := idx.db.DeleteCollection(collectionName); err != nil {
		log.Warn().Err(err).Msg("Failed to drop collection after build error")
	}
}

func chunkMetadata(chunk models.Chunk) map[string]string {
	return map[string]string{
		"file_name":  chunk.SourceFile,
		"page_label": strconv.Itoa(chunk.PageNumber),
		"chunk_id":   strconv.Itoa(chunk.ChunkID),
	}
}

// Retrieve returns the top-K most similar chunks for the query,
// ordered by descending score. K is clamped to the collection size.
func (idx *Index) Retrieve(ctx context.Context, query string, topK int) ([]models.RetrievedChunk, error) {
	count := idx.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 1
	}
	if topK > count {
		topK = count
	}

	results, err := idx.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	chunks := make([]models.RetrievedChunk, 0, len(results))
	for _, res := range results {
		pageLabel := res.Metadata["page_label"]
		if pageLabel == "" {
			pageLabel = res.Metadata["page"]
		}
		chunks = append(chunks, models.RetrievedChunk{
			Content:    res.Content,
			SourceFile: res.Metadata["file_name"],
			PageLabel:  pageLabel,
			Score:      res.Similarity,
		})
	}
	return chunks, nil
}

// Count reports how many chunks the index holds.
func (idx *Index) Count() int {
	return idx.collection.Count()
}
