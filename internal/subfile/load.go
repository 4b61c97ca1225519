package subfile

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/subfile-network/subfile/internal/hasher"
	"github.com/subfile-network/subfile/internal/manifest"
	"github.com/subfile-network/subfile/internal/store"
	"github.com/subfile-network/subfile/internal/subfileerr"
)

// Load fetches the manifest at manifestHash and every ChunkFile it
// references, binding the result to localDir.
func Load(ctx context.Context, s store.Store, manifestHash, localDir string) (Subfile, error) {
	raw, err := s.Cat(ctx, manifestHash)
	if err != nil {
		return Subfile{}, fmt.Errorf("fetch manifest %s: %w", manifestHash, err)
	}
	m, err := manifest.ParseManifest(raw)
	if err != nil {
		return Subfile{}, err
	}

	chunkFiles := make(map[string]manifest.ChunkFile, len(m.Files))
	for _, fileMeta := range m.Files {
		cfRaw, err := s.Cat(ctx, fileMeta.Hash)
		if err != nil {
			return Subfile{}, fmt.Errorf("fetch chunk file %s: %w", fileMeta.Hash, err)
		}
		cf, err := manifest.ParseChunkFile(cfRaw)
		if err != nil {
			return Subfile{}, err
		}
		chunkFiles[fileMeta.Hash] = cf
	}

	return Subfile{
		ManifestHash: manifestHash,
		LocalDir:     localDir,
		Manifest:     m,
		ChunkFiles:   chunkFiles,
	}, nil
}

// VerifyLocal reads every chunk of every file in sf's local directory and
// asserts it matches the stored digest. This is the server's startup
// self-check: a mismatch here is a fatal misconfiguration, not a runtime
// error, and callers are expected to abort the process on failure (see
// MustVerifyLocal).
func VerifyLocal(sf Subfile) error {
	for _, fileMeta := range sf.Manifest.Files {
		cf, ok := sf.ChunkFiles[fileMeta.Hash]
		if !ok {
			return fmt.Errorf("%w: chunk file %s missing from fetched set", subfileerr.ErrManifest, fileMeta.Hash)
		}
		path := filepath.Join(sf.LocalDir, cf.FileName)
		if err := verifyLocalFile(path, cf); err != nil {
			return err
		}
	}
	return nil
}

func verifyLocalFile(path string, cf manifest.ChunkFile) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", subfileerr.ErrIO, path, err)
	}
	defer f.Close()

	count := hasher.ChunkCount(cf.TotalBytes, cf.ChunkSize)
	for i := uint64(0); i < count; i++ {
		start, end := hasher.ChunkRange(i, cf.ChunkSize, cf.TotalBytes)
		buf := make([]byte, end-start)
		if _, err := f.ReadAt(buf, int64(start)); err != nil {
			return fmt.Errorf("%w: read %s [%d,%d): %v", subfileerr.ErrIO, path, start, end, err)
		}
		if !hasher.VerifyChunk(buf, cf.ChunkHashes[i]) {
			return fmt.Errorf("%w: %s chunk %d does not match manifest digest", subfileerr.ErrIntegrity, path, i)
		}
	}
	return nil
}

// MustVerifyLocal calls VerifyLocal and aborts the process on failure, per
// spec: server startup verification failure is fatal, not recoverable.
func MustVerifyLocal(sf Subfile) {
	if err := VerifyLocal(sf); err != nil {
		log.Fatalf("[server] local verification failed for manifest %s: %v", sf.ManifestHash, err)
	}
}
