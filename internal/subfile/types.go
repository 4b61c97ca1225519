// Package subfile holds the server-side, in-memory view of a manifest: its
// bytes bound to a local directory, plus the fetched ChunkFile for each
// entry.
package subfile

import (
	"sync"

	"github.com/subfile-network/subfile/internal/manifest"
)

// Subfile binds a manifest to the local directory that serves its files.
type Subfile struct {
	ManifestHash string
	LocalDir     string
	Manifest     manifest.SubfileManifest
	ChunkFiles   map[string]manifest.ChunkFile // keyed by the ChunkFile's own content hash
}

// State is the server's view of every manifest it hosts, the operator's
// identity, and optional free-query gating. Mutated only during startup;
// read-only during request serving (protected by mu for the brief window
// where a handler resolves a manifest before streaming file bytes).
type State struct {
	mu                 sync.RWMutex
	Subfiles           map[string]Subfile // keyed by manifest hash
	OperatorPublicKey  string
	ReleaseVersion     string
	FreeQueryAuthToken string // empty means no token configured, i.e. open access
}

// NewState returns an empty State for the given operator identity and
// release version.
func NewState(operatorPublicKey, releaseVersion, freeQueryAuthToken string) *State {
	return &State{
		Subfiles:           make(map[string]Subfile),
		OperatorPublicKey:  operatorPublicKey,
		ReleaseVersion:     releaseVersion,
		FreeQueryAuthToken: freeQueryAuthToken,
	}
}

// Put installs sf under its manifest hash. Called only during startup.
func (s *State) Put(sf Subfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Subfiles[sf.ManifestHash] = sf
}

// Get resolves a manifest hash to its Subfile, if served locally.
func (s *State) Get(manifestHash string) (Subfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sf, ok := s.Subfiles[manifestHash]
	return sf, ok
}

// ServedHashes returns every manifest hash this server hosts.
func (s *State) ServedHashes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	hashes := make([]string, 0, len(s.Subfiles))
	for h := range s.Subfiles {
		hashes = append(hashes, h)
	}
	return hashes
}
