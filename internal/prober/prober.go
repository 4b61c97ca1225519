// Package prober implements the availability prober: given a manifest hash
// and a list of candidate server base URLs, it finds which of them are
// currently advertising that manifest and who operates them.
//
// Candidates are fanned out concurrently with errgroup, the same pattern
// used elsewhere in this codebase for parallel health probes, adapted here
// to HTTP GETs against /status and /operator instead of an in-process
// bloom filter.
package prober

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Endpoint is one server advertising a manifest.
type Endpoint struct {
	OperatorPublicKey string
	URL               string
}

// Blocklist tracks endpoint base URLs excluded from future probes, e.g.
// because a downloader task observed a transport failure against them.
type Blocklist struct {
	mu      sync.Mutex
	blocked map[string]struct{}
}

// NewBlocklist returns an empty Blocklist.
func NewBlocklist() *Blocklist {
	return &Blocklist{blocked: make(map[string]struct{})}
}

// Add blocks url from future probes.
func (b *Blocklist) Add(url string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blocked[url] = struct{}{}
}

// Contains reports whether url is currently blocked.
func (b *Blocklist) Contains(url string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.blocked[url]
	return ok
}

// Prober queries candidate servers for manifest availability.
type Prober struct {
	client    *http.Client
	blocklist *Blocklist
}

// New returns a Prober that uses client for its HTTP requests and consults
// blocklist to skip known-bad endpoints. If blocklist is nil, one is created.
func New(client *http.Client, blocklist *Blocklist) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if blocklist == nil {
		blocklist = NewBlocklist()
	}
	return &Prober{client: client, blocklist: blocklist}
}

// Blocklist returns the prober's shared blocklist, so downloader tasks can
// add endpoints that fail transport-level requests.
func (p *Prober) Blocklist() *Blocklist { return p.blocklist }

// Probe checks every candidate base URL not currently blocked, in parallel,
// and returns the set of endpoints that confirm they advertise
// manifestHash and report a public key. A candidate that fails either
// check is added to the blocklist and dropped from the result; it does
// not fail the overall probe.
func (p *Prober) Probe(ctx context.Context, manifestHash string, candidates []string) ([]Endpoint, error) {
	results := make([]*Endpoint, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	for i, url := range candidates {
		i, url := i, url
		if p.blocklist.Contains(url) {
			continue
		}
		g.Go(func() error {
			ep, ok := p.probeOne(gctx, url, manifestHash)
			if ok {
				results[i] = ep
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}

	endpoints := make([]Endpoint, 0, len(candidates))
	for _, ep := range results {
		if ep != nil {
			endpoints = append(endpoints, *ep)
		}
	}
	return endpoints, nil
}

func (p *Prober) probeOne(ctx context.Context, url, manifestHash string) (*Endpoint, bool) {
	if !p.checkStatus(ctx, url, manifestHash) {
		p.blocklist.Add(url)
		return nil, false
	}

	publicKey, ok := p.checkOperator(ctx, url)
	if !ok {
		p.blocklist.Add(url)
		return nil, false
	}

	return &Endpoint{OperatorPublicKey: publicKey, URL: url}, true
}

func (p *Prober) checkStatus(ctx context.Context, url, manifestHash string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/status", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var hashes []string
	if err := json.NewDecoder(resp.Body).Decode(&hashes); err != nil {
		return false
	}
	for _, h := range hashes {
		if h == manifestHash {
			return true
		}
	}
	return false
}

func (p *Prober) checkOperator(ctx context.Context, url string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/operator", nil)
	if err != nil {
		return "", false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var body struct {
		PublicKey string `json:"public_key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.PublicKey == "" {
		return "", false
	}
	return body.PublicKey, true
}

// PickRandom returns a uniformly random endpoint from endpoints. Callers
// must ensure endpoints is non-empty.
func PickRandom(endpoints []Endpoint) Endpoint {
	return endpoints[rand.Intn(len(endpoints))]
}
