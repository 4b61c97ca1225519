// Package downloader implements the downloader engine: given a manifest
// hash, it resolves the manifest and each file's chunk list from the
// content store, probes for serving endpoints, and fans out parallel
// ranged HTTP fetches to reconstruct each file on local disk.
//
// Per-chunk work is tracked the same way pending transfers are tracked
// elsewhere in this codebase, fanned out with errgroup as one goroutine per
// chunk; the group sets no concurrency limit.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/subfile-network/subfile/internal/hasher"
	"github.com/subfile-network/subfile/internal/manifest"
	"github.com/subfile-network/subfile/internal/prober"
	"github.com/subfile-network/subfile/internal/store"
	"github.com/subfile-network/subfile/internal/subfileerr"
)

// Config holds the tunables of a download: retry budget, inter-retry
// delay, and the candidate base URLs the prober scans before each file's
// chunks are fetched.
type Config struct {
	Candidates     []string
	AuthToken      string
	MaxRetry       int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
	Client         *http.Client
}

// withDefaults fills in the reference defaults for any zero fields.
func (c Config) withDefaults() Config {
	if c.MaxRetry <= 0 {
		c.MaxRetry = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.Client == nil {
		c.Client = http.DefaultClient
	}
	return c
}

// ChunkFailure describes one chunk that never succeeded within its retry
// budget.
type ChunkFailure struct {
	FileName string
	Index    uint64
	Err      error
}

// FileFailure aggregates the chunk failures for one file.
type FileFailure struct {
	FileName string
	Chunks   []ChunkFailure
}

func (f *FileFailure) Error() string {
	return fmt.Sprintf("%s: %d chunk(s) failed", f.FileName, len(f.Chunks))
}

// Engine is the downloader engine.
type Engine struct {
	store  store.Store
	prober *prober.Prober
	cfg    Config
}

// New returns an Engine that reads manifests/chunk-files from st and
// discovers serving endpoints through p.
func New(st store.Store, p *prober.Prober, cfg Config) *Engine {
	return &Engine{store: st, prober: p, cfg: cfg.withDefaults()}
}

// Download resolves manifestHash to a SubfileManifest and downloads every
// listed file into outputDir. It succeeds only if every file succeeds;
// otherwise it returns an error aggregating every file's failures.
func (e *Engine) Download(ctx context.Context, manifestHash, outputDir string) error {
	sessionID := uuid.New().String()
	log.Printf("[downloader] session=%s starting download manifest=%s", sessionID, manifestHash)

	raw, err := e.store.Cat(ctx, manifestHash)
	if err != nil {
		return fmt.Errorf("download %s: %w", manifestHash, err)
	}
	m, err := manifest.ParseManifest(raw)
	if err != nil {
		return fmt.Errorf("download %s: %w", manifestHash, err)
	}

	var failures []*FileFailure
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, fm := range m.Files {
		fm := fm
		g.Go(func() error {
			if ff := e.downloadChunkFile(gctx, sessionID, manifestHash, fm, outputDir); ff != nil {
				mu.Lock()
				failures = append(failures, ff)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("download %s: %w", manifestHash, err)
	}

	if len(failures) > 0 {
		log.Printf("[downloader] session=%s manifest=%s failed: %d file(s)", sessionID, manifestHash, len(failures))
		var causes []error
		for _, ff := range failures {
			for _, c := range ff.Chunks {
				causes = append(causes, c.Err)
			}
		}
		return fmt.Errorf("%d file(s) failed: %v: %w", len(failures), failures, errors.Join(causes...))
	}
	log.Printf("[downloader] session=%s manifest=%s complete", sessionID, manifestHash)
	return nil
}

// downloadChunkFile downloads every chunk of one file and writes it into
// outputDir/<fileMeta.Name>. It returns nil on full success, or a
// *FileFailure describing what failed: fetching the chunk file, creating
// the output file, probing for endpoints, or each chunk that could not be
// fetched or written.
func (e *Engine) downloadChunkFile(ctx context.Context, sessionID, manifestHash string, fileMeta manifest.FileMetaInfo, outputDir string) *FileFailure {
	raw, err := e.store.Cat(ctx, fileMeta.Hash)
	if err != nil {
		return &FileFailure{FileName: fileMeta.Name, Chunks: []ChunkFailure{{FileName: fileMeta.Name, Err: err}}}
	}
	cf, err := manifest.ParseChunkFile(raw)
	if err != nil {
		return &FileFailure{FileName: fileMeta.Name, Chunks: []ChunkFailure{{FileName: fileMeta.Name, Err: err}}}
	}

	outPath := filepath.Join(outputDir, fileMeta.Name)
	f, err := os.Create(outPath)
	if err != nil {
		return &FileFailure{FileName: fileMeta.Name, Chunks: []ChunkFailure{{FileName: fileMeta.Name, Err: fmt.Errorf("%w: create %s: %v", subfileerr.ErrIO, outPath, err)}}}
	}
	defer f.Close()
	var writeMu sync.Mutex

	endpoints, err := e.prober.Probe(ctx, manifestHash, e.cfg.Candidates)
	if err != nil {
		return &FileFailure{FileName: fileMeta.Name, Chunks: []ChunkFailure{{FileName: fileMeta.Name, Err: err}}}
	}
	if len(endpoints) == 0 {
		return &FileFailure{FileName: fileMeta.Name, Chunks: []ChunkFailure{{FileName: fileMeta.Name, Err: subfileerr.ErrUnavailable}}}
	}

	numChunks := hasher.ChunkCount(cf.TotalBytes, cf.ChunkSize)
	pending := newPendingSet(numChunks)

	var mu sync.Mutex
	var chunkFailures []ChunkFailure
	g, gctx := errgroup.WithContext(ctx)
	for i := uint64(0); i < numChunks; i++ {
		i := i
		start, end := hasher.ChunkRange(i, cf.ChunkSize, cf.TotalBytes)
		task := chunkTask{
			sessionID:    sessionID,
			manifestHash: manifestHash,
			fileName:     fileMeta.Name,
			chunkHash:    cf.ChunkHashes[i],
			index:        i,
			start:        start,
			end:          end,
			endpoints:    endpoints,
		}
		g.Go(func() error {
			data, err := e.runChunkTask(gctx, task)
			if err != nil {
				mu.Lock()
				chunkFailures = append(chunkFailures, ChunkFailure{FileName: fileMeta.Name, Index: i, Err: err})
				mu.Unlock()
				return nil
			}
			writeMu.Lock()
			_, werr := f.WriteAt(data, int64(start))
			writeMu.Unlock()
			if werr != nil {
				mu.Lock()
				chunkFailures = append(chunkFailures, ChunkFailure{FileName: fileMeta.Name, Index: i, Err: fmt.Errorf("%w: write chunk %d: %v", subfileerr.ErrIO, i, werr)})
				mu.Unlock()
				return nil
			}
			pending.complete(i)
			return nil
		})
	}
	_ = g.Wait()

	if len(chunkFailures) > 0 {
		log.Printf("[downloader] session=%s file=%s incomplete: %d of %d chunks still pending", sessionID, fileMeta.Name, pending.remaining(), numChunks)
		return &FileFailure{FileName: fileMeta.Name, Chunks: chunkFailures}
	}
	return nil
}

// pendingSet tracks the chunk indices of one file that have not yet been
// written. A chunk leaves the set only after its bytes are verified and
// written at the correct offset.
type pendingSet struct {
	mu      sync.Mutex
	indices map[uint64]struct{}
}

func newPendingSet(numChunks uint64) *pendingSet {
	indices := make(map[uint64]struct{}, numChunks)
	for i := uint64(0); i < numChunks; i++ {
		indices[i] = struct{}{}
	}
	return &pendingSet{indices: indices}
}

func (p *pendingSet) complete(i uint64) {
	p.mu.Lock()
	delete(p.indices, i)
	p.mu.Unlock()
}

func (p *pendingSet) remaining() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.indices)
}

// chunkTask is the fully resolved request for one chunk. The endpoint set
// is fixed at construction time; the endpoint actually used is re-picked
// uniformly at random per attempt, skipping anything blocklisted since.
type chunkTask struct {
	sessionID    string
	manifestHash string
	fileName     string
	chunkHash    string
	index        uint64
	start, end   uint64
	endpoints    []prober.Endpoint
}

// runChunkTask fetches one chunk, making at most cfg.MaxRetry attempts in
// total with a fixed delay between attempts. A transport failure
// blocklists the endpoint that produced it, so the next attempt picks a
// survivor; an integrity failure is logged and retried without
// blocklisting (one bad byte range does not make an endpoint unreachable).
func (e *Engine) runChunkTask(ctx context.Context, task chunkTask) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < e.cfg.MaxRetry; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(e.cfg.RetryDelay):
			}
		}

		endpoint := e.pickEndpoint(task.endpoints)
		data, err := e.fetchChunk(ctx, task, endpoint)
		if err == nil {
			if !hasher.VerifyChunk(data, task.chunkHash) {
				lastErr = fmt.Errorf("%w: chunk %d of %s", subfileerr.ErrIntegrity, task.index, task.fileName)
				log.Printf("[downloader] session=%s endpoint=%s chunk=%d of %s failed verification, retrying", task.sessionID, endpoint.URL, task.index, task.fileName)
				continue
			}
			return data, nil
		}

		lastErr = err
		log.Printf("[downloader] session=%s endpoint=%s chunk=%d of %s transport failure, blocklisting: %v", task.sessionID, endpoint.URL, task.index, task.fileName, err)
		e.prober.Blocklist().Add(endpoint.URL)
	}
	return nil, fmt.Errorf("%w: chunk %d of %s: %v", subfileerr.ErrExhaustedRetries, task.index, task.fileName, lastErr)
}

// pickEndpoint chooses uniformly at random among the endpoints not yet
// blocklisted. When every endpoint has been blocklisted the full set is
// used anyway, so a chunk keeps retrying until its budget runs out rather
// than failing with nothing attempted.
func (e *Engine) pickEndpoint(endpoints []prober.Endpoint) prober.Endpoint {
	available := make([]prober.Endpoint, 0, len(endpoints))
	for _, ep := range endpoints {
		if !e.prober.Blocklist().Contains(ep.URL) {
			available = append(available, ep)
		}
	}
	if len(available) == 0 {
		available = endpoints
	}
	return prober.PickRandom(available)
}

// fetchChunk issues the ranged GET for one chunk against endpoint.
// A non-2xx status or a response missing Content-Range is a transport
// failure; everything else including the returned bytes is handed back to
// the caller for integrity verification.
func (e *Engine) fetchChunk(ctx context.Context, task chunkTask, endpoint prober.Endpoint) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, e.cfg.RequestTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/subfiles/id/%s", endpoint.URL, task.manifestHash)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", subfileerr.ErrTransport, err)
	}
	req.Header.Set("file_name", task.fileName)
	req.Header.Set("Content-Range", fmt.Sprintf("bytes=%d-%d", task.start, task.end-1))
	if e.cfg.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.AuthToken)
	}

	resp, err := e.cfg.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", subfileerr.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: unexpected status %d", subfileerr.ErrTransport, resp.StatusCode)
	}
	if resp.Header.Get("Content-Range") == "" {
		return nil, fmt.Errorf("%w: response missing Content-Range", subfileerr.ErrTransport)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", subfileerr.ErrTransport, err)
	}
	return data, nil
}
