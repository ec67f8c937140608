// Package nodeinfo fetches and caches identity details of the node this
// verifier follows, for display purposes.
package nodeinfo

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Info describes the followed node.
type Info struct {
	ChainID     string
	NodeVersion string
}

// Resolver fetches chain id and node version from the RPC /status endpoint
// and caches them with a TTL. Safe for concurrent use.
type Resolver struct {
	rpcURL    string
	mu        sync.RWMutex
	cached    Info
	lastFetch time.Time
	ttl       time.Duration
	client    *http.Client
}

func NewResolver(rpcURL string) *Resolver {
	if rpcURL == "" {
		return nil
	}
	return &Resolver{
		rpcURL: rpcURL,
		ttl:    10 * time.Minute, // chain identity changes only on upgrades
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Resolve returns the cached node info, refreshing it when stale. A failed
// refresh keeps whatever was cached; display data is best-effort.
func (r *Resolver) Resolve() Info {
	if r == nil {
		return Info{}
	}

	r.mu.RLock()
	info := r.cached
	stale := time.Since(r.lastFetch) > r.ttl
	r.mu.RUnlock()

	if !stale && info.ChainID != "" {
		return info
	}

	r.refresh()

	r.mu.RLock()
	info = r.cached
	r.mu.RUnlock()
	return info
}

type statusResp struct {
	Result struct {
		NodeInfo struct {
			Network string `json:"network"`
			Version string `json:"version"`
		} `json:"node_info"`
	} `json:"result"`
}

func (r *Resolver) refresh() {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Double-check under lock
	if time.Since(r.lastFetch) <= r.ttl && r.cached.ChainID != "" {
		return
	}

	resp, err := r.client.Get(r.rpcURL + "/status")
	if err != nil {
		return
	}
	defer resp.Body.Close()

	var payload statusResp
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return
	}
	if payload.Result.NodeInfo.Network == "" {
		return
	}

	r.cached = Info{
		ChainID:     payload.Result.NodeInfo.Network,
		NodeVersion: payload.Result.NodeInfo.Version,
	}
	r.lastFetch = time.Now()
}
