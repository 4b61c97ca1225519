// Package publisher chunks the configured files in a directory, produces
// ChunkFile documents,
// uploads them to the content store, then uploads a SubfileManifest
// referencing them.
//
// Chunking is plumbed through the hasher package; publish() always hashes
// and uploads every file before constructing and publishing the manifest —
// there is no partial-manifest publishing.
package publisher

import (
	"context"
	"fmt"
	"log"

	"github.com/subfile-network/subfile/internal/hasher"
	"github.com/subfile-network/subfile/internal/manifest"
	"github.com/subfile-network/subfile/internal/store"
	"github.com/subfile-network/subfile/internal/subfileerr"
)

// Config describes one publish operation: which files to chunk under
// ReadDir, and the manifest metadata to attach.
type Config struct {
	ReadDir     string
	FileNames   []string
	ChunkSize   uint64
	FileType    string
	SpecVersion string
	Description string
	ChainID     string
	StartBlock  uint64
	EndBlock    *uint64
}

// Publisher uploads chunked files and their manifest to a content store.
type Publisher struct {
	store  store.Store
	config Config
}

// New returns a Publisher that chunks files under config.ReadDir and
// uploads to store.
func New(s store.Store, config Config) *Publisher {
	return &Publisher{store: s, config: config}
}

// Publish chunks every configured file, uploads each ChunkFile document,
// then uploads a SubfileManifest referencing them. If any file fails, the
// manifest is not uploaded — there is no partial-manifest publishing.
func (p *Publisher) Publish(ctx context.Context) (string, error) {
	fileMetas, err := p.hashAndPublishFiles(ctx)
	if err != nil {
		return "", err
	}

	m := manifest.SubfileManifest{
		Files:       fileMetas,
		FileType:    p.config.FileType,
		SpecVersion: p.config.SpecVersion,
		Description: p.config.Description,
		ChainID:     p.config.ChainID,
		BlockRange: manifest.BlockRange{
			StartBlock: p.config.StartBlock,
			EndBlock:   p.config.EndBlock,
		},
	}

	yamlBytes, err := manifest.SerializeManifest(m)
	if err != nil {
		return "", err
	}

	manifestHash, err := p.store.Add(ctx, yamlBytes)
	if err != nil {
		return "", fmt.Errorf("%w: publish manifest: %v", subfileerr.ErrStore, err)
	}

	log.Printf("[publisher] published subfile manifest %s (%d files)", manifestHash, len(fileMetas))
	return manifestHash, nil
}

// hashAndPublishFiles chunks and uploads every configured file, stopping at
// the first failure.
func (p *Publisher) hashAndPublishFiles(ctx context.Context) ([]manifest.FileMetaInfo, error) {
	metas := make([]manifest.FileMetaInfo, 0, len(p.config.FileNames))
	for _, name := range p.config.FileNames {
		hash, err := p.hashAndPublishFile(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("publish %s: %w", name, err)
		}
		metas = append(metas, manifest.FileMetaInfo{Name: name, Hash: hash})
	}
	return metas, nil
}

// hashAndPublishFile chunks one file and uploads its ChunkFile document,
// returning the document's content hash.
func (p *Publisher) hashAndPublishFile(ctx context.Context, name string) (string, error) {
	cf, err := hasher.ChunkFile(p.config.ReadDir, name, p.config.ChunkSize)
	if err != nil {
		return "", err
	}

	yamlBytes, err := manifest.SerializeChunkFile(cf)
	if err != nil {
		return "", err
	}

	hash, err := p.store.Add(ctx, yamlBytes)
	if err != nil {
		return "", fmt.Errorf("%w: add chunk file: %v", subfileerr.ErrStore, err)
	}
	log.Printf("[publisher] chunked %s into %d chunks, uploaded as %s", name, len(cf.ChunkHashes), hash)
	return hash, nil
}
