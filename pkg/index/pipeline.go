// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: Apache-2.0

package index

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codecontext/codecontext-core/internal/contract"
	"github.com/codecontext/codecontext-core/pkg/bm25f"
	"github.com/codecontext/codecontext-core/pkg/codeobject"
	"github.com/codecontext/codecontext-core/pkg/embedding"
	"github.com/codecontext/codecontext-core/pkg/parse"
	"github.com/codecontext/codecontext-core/pkg/relate"
	"github.com/codecontext/codecontext-core/pkg/retry"
	"github.com/codecontext/codecontext-core/pkg/tokenize"
	"github.com/codecontext/codecontext-core/pkg/vectorstore"
)

// Config configures one pipeline run.
type Config struct {
	ProjectID        string
	RootPath         string
	IncludeGlobs     []string
	ExcludeGlobs     []string
	MaxFileSizeBytes int64
	ParallelWorkers  int
	MaxRetries       int
}

func (c *Config) sanitize() {
	if c.ParallelWorkers <= 0 {
		c.ParallelWorkers = 4
	}
	if c.MaxFileSizeBytes <= 0 {
		c.MaxFileSizeBytes = 1 << 20 // 1 MiB
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = retry.DefaultConfig().MaxRetries
	}
}

// Result summarizes a completed run.
type Result struct {
	RunID          string
	ProjectID      string
	TotalFiles     int
	Added          int
	Modified       int
	Unchanged      int
	Deleted        int
	ObjectsCount   int
	DocumentsCount int
	Relationships  int
	ParseErrors    int
	EmbedErrors    int
	SkipReasons    map[string]int
	ParseDuration  time.Duration
	EmbedDuration  time.Duration
	TotalDuration  time.Duration
}

// Pipeline runs full and incremental syncs against a VectorStore.
type Pipeline struct {
	store     vectorstore.Store
	embedder  embedding.Provider
	encoder   *bm25f.Encoder
	tokenizer *tokenize.Tokenizer
	states    *StateStore
	docParser *parse.DocumentParser
	cfgParser *parse.ConfigParser
	logger    *slog.Logger
	retryCfg  retry.Config
	metrics   *Metrics
}

// WithMetrics attaches a Prometheus metrics sink the pipeline updates
// after every Run. Pass nil to detach (the default).
func (p *Pipeline) WithMetrics(m *Metrics) *Pipeline {
	p.metrics = m
	return p
}

// NewPipeline wires a Pipeline from its collaborators.
func NewPipeline(store vectorstore.Store, embedder embedding.Provider, states *StateStore, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	tokenizer := tokenize.New()
	return &Pipeline{
		store:     store,
		embedder:  embedder,
		encoder:   bm25f.NewEncoder(bm25f.DefaultConfig(), tokenizer),
		tokenizer: tokenizer,
		states:    states,
		docParser: parse.NewDocumentParser(parse.DefaultChunkConfig()),
		cfgParser: &parse.ConfigParser{},
		logger:    logger,
		retryCfg:  retry.DefaultConfig(),
	}
}

type parsedFile struct {
	relPath       string
	objects       []codeobject.CodeObject
	documents     []codeobject.DocumentNode
	docCategory   string // "markdown" or "config", used for retrieval type-boosting
	relationships []codeobject.Relationship
	checksum      string
}

// Run executes a sync: a full sync when no prior IndexState exists for the
// project, otherwise an incremental sync against it. Both share this one
// code path — the only difference is how large the Added bucket is.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	start := time.Now()
	cfg.sanitize()
	p.retryCfg.MaxRetries = cfg.MaxRetries

	discovered, err := Discover(cfg.RootPath, cfg.IncludeGlobs, cfg.ExcludeGlobs, cfg.MaxFileSizeBytes)
	if err != nil {
		return nil, fmt.Errorf("discover files: %w", err)
	}

	prior, err := p.states.Load(cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load prior state: %w", err)
	}
	priorChecksums := map[string]codeobject.FileChecksum{}
	if prior != nil {
		priorChecksums = prior.FileChecksums
	}

	delta, err := Classify(discovered.Files, priorChecksums)
	if err != nil {
		return nil, fmt.Errorf("classify files: %w", err)
	}

	byPath := make(map[string]DiscoveredFile, len(discovered.Files))
	for _, f := range discovered.Files {
		byPath[f.RelPath] = f
	}

	// Parse the union of changed and unchanged files: every file needs a
	// fresh CodeObject set so the relationship extractor sees the whole
	// graph, even though only changed files are re-embedded/re-upserted.
	toParse := append(append([]string{}, delta.Unchanged...), delta.ChangedFiles()...)
	sort.Strings(toParse)

	parseStart := time.Now()
	parsedByPath, parseErrors := p.parseFiles(ctx, byPath, toParse, cfg.ParallelWorkers)
	parseDuration := time.Since(parseStart)

	// Relationship extraction runs over the full object graph.
	var allObjects []codeobject.CodeObject
	var allDocuments []codeobject.DocumentNode
	var relationships []codeobject.Relationship
	for _, pf := range parsedByPath {
		allObjects = append(allObjects, pf.objects...)
		allDocuments = append(allDocuments, pf.documents...)
		relationships = append(relationships, pf.relationships...)
	}
	extractor := relate.NewExtractor(allObjects)
	relationships = append(relationships, extractor.Extract(allObjects)...)
	relationships = append(relationships, extractor.ExtractDocumentRelationships(allDocuments)...)
	relationships = dedupRelationships(relationships)
	outgoingByID, incomingByID := indexRelationships(relationships)

	// Deleted files: drop their points outright.
	for _, relPath := range delta.Deleted {
		if err := p.store.DeleteByFilePath(ctx, relPath); err != nil {
			p.logger.Warn("index.delete.error", "file", relPath, "err", err)
		}
	}

	// Changed files: drop stale points before re-upserting, so a shrunk
	// file doesn't leave orphaned points from its previous, larger form.
	changed := delta.ChangedFiles()
	for _, relPath := range changed {
		if err := p.store.DeleteByFilePath(ctx, relPath); err != nil {
			p.logger.Warn("index.delete_stale.error", "file", relPath, "err", err)
		}
	}

	embedStart := time.Now()
	embedErrors := p.embedAndUpsert(ctx, parsedByPath, changed, cfg.ParallelWorkers, outgoingByID, incomingByID)
	embedDuration := time.Since(embedStart)

	// Persist the new state: checksums for every currently-discovered
	// file, plus the full relationship set, written atomically.
	newState := &codeobject.IndexState{
		ProjectID:         cfg.ProjectID,
		ProjectPath:       cfg.RootPath,
		TotalFiles:        len(discovered.Files),
		TotalObjects:      len(allObjects),
		LastIndexed:       time.Now().UTC().Format(time.RFC3339),
		FileChecksums:     make(map[string]codeobject.FileChecksum, len(discovered.Files)),
		RelationshipsBlob: relationships,
	}
	for _, f := range discovered.Files {
		pf, ok := parsedByPath[f.RelPath]
		checksum := ""
		if ok {
			checksum = pf.checksum
			newState.TotalDocuments += len(pf.documents)
		} else if prior != nil {
			checksum = prior.FileChecksums[f.RelPath].Checksum
		}
		newState.FileChecksums[f.RelPath] = codeobject.FileChecksum{
			FilePath:    f.RelPath,
			Checksum:    checksum,
			LastIndexed: newState.LastIndexed,
		}
	}
	if err := p.states.Save(newState); err != nil {
		return nil, fmt.Errorf("save index state: %w", err)
	}

	stats := delta.Stats()
	result := &Result{
		RunID:          uuid.NewString(),
		ProjectID:      cfg.ProjectID,
		TotalFiles:     len(discovered.Files),
		Added:          stats.Added,
		Modified:       stats.Modified,
		Unchanged:      stats.Unchanged,
		Deleted:        stats.Deleted,
		ObjectsCount:   len(allObjects),
		DocumentsCount: newState.TotalDocuments,
		Relationships:  len(relationships),
		ParseErrors:    parseErrors,
		EmbedErrors:    embedErrors,
		SkipReasons:    discovered.SkipReasons,
		ParseDuration:  parseDuration,
		EmbedDuration:  embedDuration,
		TotalDuration:  time.Since(start),
	}

	p.logger.Info("index.run.complete",
		"run_id", result.RunID, "project_id", cfg.ProjectID,
		"added", result.Added, "modified", result.Modified,
		"unchanged", result.Unchanged, "deleted", result.Deleted,
		"objects", result.ObjectsCount, "relationships", result.Relationships,
		"parse_errors", result.ParseErrors, "embed_errors", result.EmbedErrors,
		"duration_ms", result.TotalDuration.Milliseconds(),
	)
	p.metrics.observeRun(result)
	return result, nil
}

// parseFiles parses the given relative paths with a worker pool bounded
// to workers concurrent goroutines.
func (p *Pipeline) parseFiles(ctx context.Context, byPath map[string]DiscoveredFile, relPaths []string, workers int) (map[string]*parsedFile, int) {
	results := make(map[string]*parsedFile, len(relPaths))
	var mu sync.Mutex
	var errorCount int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, relPath := range relPaths {
		relPath := relPath
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			default:
			}
			f := byPath[relPath]
			pf, err := p.parseOne(f)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errorCount++
				p.logger.Warn("index.parse.error", "file", relPath, "err", err)
				return nil
			}
			results[relPath] = pf
			return nil
		})
	}
	_ = g.Wait()
	return results, errorCount
}

func (p *Pipeline) parseOne(f DiscoveredFile) (*parsedFile, error) {
	source, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.RelPath, err)
	}
	checksum := codeobject.Checksum(string(source))

	pf := &parsedFile{relPath: f.RelPath, checksum: checksum}

	switch f.Language {
	case "markdown":
		pf.docCategory = "markdown"
		pf.documents = p.docParser.Chunk(f.RelPath, source)
		return pf, nil
	case "config":
		pf.docCategory = "config"
		if isDotEnvPath(f.RelPath) {
			pf.documents = p.cfgParser.ChunkDotEnv(f.RelPath, source)
			return pf, nil
		}
		docs, err := p.cfgParser.Chunk(f.RelPath, source)
		if err != nil {
			return nil, fmt.Errorf("parse config %s: %w", f.RelPath, err)
		}
		pf.documents = docs
		return pf, nil
	}

	parser, ok := parse.ForFile(f.RelPath)
	if !ok {
		return pf, nil
	}
	result, err := parser.Parse(f.RelPath, source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", f.RelPath, err)
	}
	pf.objects = result.Objects
	pf.relationships = result.Relationships
	return pf, nil
}

// embedAndUpsert embeds and upserts the objects/documents of the changed
// files only, per-file, so one file's embedding failure does not abort the
// run (it is recorded and skipped).
func (p *Pipeline) embedAndUpsert(ctx context.Context, parsedByPath map[string]*parsedFile, changed []string, workers int, outgoingByID, incomingByID map[string][]codeobject.Relationship) int {
	var errorCount counter
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, relPath := range changed {
		relPath := relPath
		pf, ok := parsedByPath[relPath]
		if !ok {
			continue
		}
		g.Go(func() error {
			if err := p.embedAndUpsertFile(gctx, pf, outgoingByID, incomingByID); err != nil {
				p.logger.Warn("index.embed.file_failed", "file", relPath, "err", err)
				errorCount.inc()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errorCount.get()
}

func (p *Pipeline) embedAndUpsertFile(ctx context.Context, pf *parsedFile, outgoingByID, incomingByID map[string][]codeobject.Relationship) error {
	points := make([]vectorstore.Point, 0, len(pf.objects)+len(pf.documents))

	if len(pf.objects) > 0 {
		texts := make([]string, len(pf.objects))
		for i, obj := range pf.objects {
			texts[i] = obj.Content
		}
		var vectors [][]float32
		err := retry.Do(ctx, p.retryCfg, retry.DefaultClassifier, func(attempt int, sleep time.Duration, err error) {
			p.logger.Warn("index.embed.retry", "file", pf.relPath, "attempt", attempt+1, "err", err)
		}, func() error {
			v, embedErr := p.embedder.Embed(ctx, texts, embedding.DocumentPassage)
			if embedErr != nil {
				return embedErr
			}
			vectors = v
			return nil
		})
		if err != nil {
			return fmt.Errorf("embed objects for %s: %w", pf.relPath, err)
		}
		for i, obj := range pf.objects {
			fields := bm25f.Fields{
				"name": obj.Name, "qualified_name": obj.QualifiedName,
				"signature": obj.Signature, "docstring": obj.Docstring,
				"content": obj.Content, "filename": obj.RelativePath, "file_path": obj.FilePath,
			}
			sparse := p.encoder.EncodeDocument(fields)
			weight := bm25f.ScoreWeight(len(p.tokenizer.Tokenize(obj.Content)))
			payload := objectPayload(obj, weight, outgoingByID[obj.ID], incomingByID[obj.ID])
			points = append(points, vectorstore.Point{ID: obj.ID, Dense: vectors[i], Sparse: sparse, Payload: payload})
		}
	}

	if len(pf.documents) > 0 {
		texts := make([]string, len(pf.documents))
		for i, doc := range pf.documents {
			texts[i] = doc.Content
		}
		vectors, err := p.embedder.Embed(ctx, texts, embedding.DocumentPassage)
		if err != nil {
			return fmt.Errorf("embed documents for %s: %w", pf.relPath, err)
		}
		for i, doc := range pf.documents {
			fields := bm25f.Fields{"content": doc.Content, "file_path": doc.FilePath}
			sparse := p.encoder.EncodeDocument(fields)
			weight := bm25f.ScoreWeight(len(p.tokenizer.Tokenize(doc.Content)))
			payload := documentPayload(doc, pf.docCategory, weight, outgoingByID[doc.ID], incomingByID[doc.ID])
			points = append(points, vectorstore.Point{ID: doc.ID, Dense: vectors[i], Sparse: sparse, Payload: payload})
		}
	}

	if len(points) == 0 {
		return nil
	}
	for _, batch := range splitBySoftLimit(points) {
		if err := p.store.Upsert(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// splitBySoftLimit groups points into chunks whose estimated payload size
// stays under contract.SoftLimitBytes(), so one file with unusually many
// or unusually large objects can't push a single upsert call's memory
// footprint past the configured ceiling. A single point that alone
// exceeds the limit still gets its own batch rather than being dropped.
func splitBySoftLimit(points []vectorstore.Point) [][]vectorstore.Point {
	limit := int64(contract.SoftLimitBytes())
	var batches [][]vectorstore.Point
	var current []vectorstore.Point
	var currentBytes int64
	for _, pt := range points {
		ptBytes := pointByteSize(pt)
		if len(current) > 0 && currentBytes+ptBytes > limit {
			batches = append(batches, current)
			current = nil
			currentBytes = 0
		}
		current = append(current, pt)
		currentBytes += ptBytes
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

// pointByteSize estimates a Point's in-memory footprint: 4 bytes per dense
// float, plus the sparse vector's indices/values, plus payload string
// field lengths. It is an estimate, not an exact count.
func pointByteSize(pt vectorstore.Point) int64 {
	size := int64(len(pt.ID)) + int64(len(pt.Dense)*4) + int64(len(pt.Sparse)*12)
	for _, v := range pt.Payload {
		if s, ok := v.(string); ok {
			size += int64(len(s))
		}
	}
	return size
}

// dedupRelationships drops duplicates that arise from parsers emitting an
// intra-file relationship that the cross-file extractor also derives (e.g.
// a same-file import resolved both ways).
func dedupRelationships(relationships []codeobject.Relationship) []codeobject.Relationship {
	seen := make(map[[3]string]bool, len(relationships))
	out := make([]codeobject.Relationship, 0, len(relationships))
	for _, r := range relationships {
		key := r.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func isDotEnvPath(relPath string) bool {
	base := filepath.Base(relPath)
	return base == ".env" || hasDotEnvSuffix(base)
}

func objectPayload(obj codeobject.CodeObject, scoreWeight float64, outgoing, incoming []codeobject.Relationship) map[string]any {
	return map[string]any{
		"kind":                   "object",
		"name":                   obj.Name,
		"qualified_name":         obj.QualifiedName,
		"object_type":            string(obj.ObjectType),
		"language":               obj.Language,
		"file_path":              obj.FilePath,
		"start_line":             obj.StartLine,
		"end_line":               obj.EndLine,
		"signature":              obj.Signature,
		"content":                obj.Content,
		"score_weight":           scoreWeight,
		"metadata":               obj.Metadata,
		"outgoing_relationships": relationshipEdges(outgoing, true),
		"incoming_relationships": relationshipEdges(incoming, false),
	}
}

func documentPayload(doc codeobject.DocumentNode, category string, scoreWeight float64, outgoing, incoming []codeobject.Relationship) map[string]any {
	return map[string]any{
		"kind": "document",
		// object_type carries the document's retrieval type-boost category
		// ("markdown" or "config"), matching the category key space
		// CodeObject.ObjectType uses for code entities.
		"object_type":            category,
		"node_type":              string(doc.NodeType),
		"file_path":              doc.FilePath,
		"start_line":             doc.StartLine,
		"end_line":               doc.EndLine,
		"content":                doc.Content,
		"score_weight":           scoreWeight,
		"metadata":               doc.Metadata,
		"outgoing_relationships": relationshipEdges(outgoing, true),
		"incoming_relationships": relationshipEdges(incoming, false),
	}
}

// indexRelationships groups a deduplicated relationship set by source and
// by target, so each object's payload can carry its own 1-hop neighborhood
// without a second pass over the vector store at search time.
func indexRelationships(relationships []codeobject.Relationship) (outgoing, incoming map[string][]codeobject.Relationship) {
	outgoing = make(map[string][]codeobject.Relationship)
	incoming = make(map[string][]codeobject.Relationship)
	for _, r := range relationships {
		outgoing[r.SourceID] = append(outgoing[r.SourceID], r)
		if r.TargetID != "" {
			incoming[r.TargetID] = append(incoming[r.TargetID], r)
		}
	}
	return outgoing, incoming
}

// relationshipEdges serializes a relationship set into the compact
// {id, type, name, object_type, file_path, line} records a payload stores,
// read back by the retriever's graph-expansion stage without a roundtrip
// to the vector store. forward selects whether the neighbor-facing fields
// are the relationship's target (outgoing) or source (incoming).
func relationshipEdges(relationships []codeobject.Relationship, forward bool) []map[string]any {
	if len(relationships) == 0 {
		return nil
	}
	edges := make([]map[string]any, 0, len(relationships))
	for _, r := range relationships {
		edge := map[string]any{"relation_type": string(r.RelationType)}
		if forward {
			edge["id"] = r.TargetID
			edge["name"] = r.TargetName
			edge["object_type"] = r.TargetType
			edge["file_path"] = r.TargetFile
			edge["line"] = r.TargetLine
		} else {
			edge["id"] = r.SourceID
			edge["name"] = r.SourceName
			edge["object_type"] = r.SourceType
			edge["file_path"] = r.SourceFile
			edge["line"] = r.SourceLine
		}
		edges = append(edges, edge)
	}
	return edges
}

// counter is a tiny mutex-guarded counter safe for concurrent inc() from
// errgroup goroutines.
type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) inc()     { c.mu.Lock(); c.n++; c.mu.Unlock() }
func (c *counter) get() int { c.mu.Lock(); defer c.mu.Unlock(); return c.n }
