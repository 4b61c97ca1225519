package subfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/subfile-network/subfile/internal/hasher"
	"github.com/subfile-network/subfile/internal/manifest"
	"github.com/subfile-network/subfile/internal/store"
)

func publishFixture(t *testing.T, s *store.MemStore, dir, name string, content []byte, chunkSize uint64) (manifestHash string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	cf, err := hasher.ChunkFile(dir, name, chunkSize)
	if err != nil {
		t.Fatalf("ChunkFile: %v", err)
	}
	cfRaw, err := manifest.SerializeChunkFile(cf)
	if err != nil {
		t.Fatalf("SerializeChunkFile: %v", err)
	}
	cfHash, err := s.Add(context.Background(), cfRaw)
	if err != nil {
		t.Fatalf("Add chunk file: %v", err)
	}

	m := manifest.SubfileManifest{Files: []manifest.FileMetaInfo{{Name: name, Hash: cfHash}}}
	mRaw, err := manifest.SerializeManifest(m)
	if err != nil {
		t.Fatalf("SerializeManifest: %v", err)
	}
	mHash, err := s.Add(context.Background(), mRaw)
	if err != nil {
		t.Fatalf("Add manifest: %v", err)
	}
	return mHash
}

func TestLoadAndVerifyLocal(t *testing.T) {
	dir := t.TempDir()
	s := store.NewMemStore()
	mHash := publishFixture(t, s, dir, "abc.bin", []byte("abc"), 1048576)

	sf, err := Load(context.Background(), s, mHash, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := VerifyLocal(sf); err != nil {
		t.Fatalf("VerifyLocal: %v", err)
	}
}

func TestVerifyLocalRejectsTamperedFile(t *testing.T) {
	dir := t.TempDir()
	s := store.NewMemStore()
	mHash := publishFixture(t, s, dir, "abc.bin", []byte("abc"), 1048576)

	sf, err := Load(context.Background(), s, mHash, dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "abc.bin"), []byte("xyz"), 0o644); err != nil {
		t.Fatalf("tamper fixture: %v", err)
	}

	if err := VerifyLocal(sf); err == nil {
		t.Fatal("expected VerifyLocal to reject tampered content")
	}
}
