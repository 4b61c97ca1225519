package manifest

import (
	"fmt"

	yaml "go.yaml.in/yaml/v2"

	"github.com/subfile-network/subfile/internal/subfileerr"
)

// SerializeManifest renders m as the self-describing YAML text format used
// on the wire and in the store.
func SerializeManifest(m SubfileManifest) ([]byte, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal manifest: %v", subfileerr.ErrManifest, err)
	}
	return out, nil
}

// ParseManifest parses the YAML text format produced by SerializeManifest.
func ParseManifest(data []byte) (SubfileManifest, error) {
	var m SubfileManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return SubfileManifest{}, fmt.Errorf("%w: parse manifest: %v", subfileerr.ErrManifest, err)
	}
	return m, nil
}

// SerializeChunkFile renders cf as the self-describing YAML text format used
// on the wire and in the store.
func SerializeChunkFile(cf ChunkFile) ([]byte, error) {
	out, err := yaml.Marshal(cf)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal chunk file: %v", subfileerr.ErrManifest, err)
	}
	return out, nil
}

// ParseChunkFile parses the YAML text format produced by SerializeChunkFile.
func ParseChunkFile(data []byte) (ChunkFile, error) {
	var cf ChunkFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return ChunkFile{}, fmt.Errorf("%w: parse chunk file: %v", subfileerr.ErrManifest, err)
	}
	return cf, nil
}
