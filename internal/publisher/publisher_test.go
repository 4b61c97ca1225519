package publisher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/subfile-network/subfile/internal/manifest"
	"github.com/subfile-network/subfile/internal/store"
)

func TestPublishSingleFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "abc.bin"), []byte("abc"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	s := store.NewMemStore()
	p := New(s, Config{
		ReadDir:     dir,
		FileNames:   []string{"abc.bin"},
		ChunkSize:   1048576,
		FileType:    "data_bundle",
		SpecVersion: "0.1.0",
		ChainID:     "1",
	})

	hash, err := p.Publish(context.Background())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	raw, err := s.Cat(context.Background(), hash)
	if err != nil {
		t.Fatalf("Cat manifest: %v", err)
	}
	m, err := manifest.ParseManifest(raw)
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if len(m.Files) != 1 || m.Files[0].Name != "abc.bin" {
		t.Fatalf("manifest files = %+v, want one entry named abc.bin", m.Files)
	}

	cfRaw, err := s.Cat(context.Background(), m.Files[0].Hash)
	if err != nil {
		t.Fatalf("Cat chunk file: %v", err)
	}
	cf, err := manifest.ParseChunkFile(cfRaw)
	if err != nil {
		t.Fatalf("ParseChunkFile: %v", err)
	}
	if cf.TotalBytes != 3 || len(cf.ChunkHashes) != 1 {
		t.Errorf("chunk file = %+v, want TotalBytes=3, 1 chunk", cf)
	}
}

func TestPublishFailsWithoutPartialManifest(t *testing.T) {
	dir := t.TempDir()
	s := store.NewMemStore()
	p := New(s, Config{
		ReadDir:   dir,
		FileNames: []string{"missing.bin"},
		ChunkSize: 1024,
	})

	if _, err := p.Publish(context.Background()); err == nil {
		t.Fatal("expected Publish to fail for a missing file")
	}
}
