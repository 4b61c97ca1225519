// Package manifest defines the on-wire, on-disk schema shared by the
// publisher, server, and downloader: SubfileManifest, ChunkFile,
// FileMetaInfo, and BlockRange.
//
// Reshaped into a manifest of named files by content hash, each resolving
// to its own chunk-hash sidecar document, rather than one flat manifest
// per file.
package manifest

// FileMetaInfo names one file within a SubfileManifest by its filename and
// the content hash of its ChunkFile document in the store.
type FileMetaInfo struct {
	Name string `yaml:"name"`
	Hash string `yaml:"hash"`
}

// BlockRange is the chain block range a manifest's contents correspond to.
// EndBlock is optional; a nil value means "open-ended".
type BlockRange struct {
	StartBlock uint64  `yaml:"start_block"`
	EndBlock   *uint64 `yaml:"end_block,omitempty"`
}

// SubfileManifest is the top-level document listing files by content hash
// plus metadata. It is itself addressed by its own content hash once
// uploaded to the store.
type SubfileManifest struct {
	Files       []FileMetaInfo `yaml:"files"`
	FileType    string         `yaml:"file_type"`
	SpecVersion string         `yaml:"spec_version"`
	Description string         `yaml:"description"`
	ChainID     string         `yaml:"chain_id"`
	BlockRange  BlockRange     `yaml:"block_range"`
}

// ChunkFile is the sidecar document for one file, enumerating its per-chunk
// digests. Invariant: len(ChunkHashes) == ceil(TotalBytes / ChunkSize); the
// last chunk may be shorter than ChunkSize, every other chunk is exactly
// ChunkSize bytes.
type ChunkFile struct {
	FileName    string   `yaml:"file_name"`
	TotalBytes  uint64   `yaml:"total_bytes"`
	ChunkSize   uint64   `yaml:"chunk_size"`
	ChunkHashes []string `yaml:"chunk_hashes"`
}
