package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"delupo-stats/pkg/logging"
	"delupo-stats/pkg/models"
	"delupo-stats/pkg/payload"
)

// HTTPOptions paramètre la source HTTP.
type HTTPOptions struct {
	BaseURL   string
	Timeout   time.Duration
	CacheSize int           // 0 = pas de cache
	CacheTTL  time.Duration // durée de fraîcheur d'un payload mis en cache
	Client    *http.Client
}

// HTTP interroge l'API de métriques et garde les réponses récentes en cache.
type HTTP struct {
	base   *url.URL
	client *http.Client
	cache  *expirable.LRU[string, models.RawPayload]
}

// NewHTTP valide l'URL de base et prépare le client.
func NewHTTP(opts HTTPOptions) (*HTTP, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url incomplète: %q", opts.BaseURL)
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	h := &HTTP{base: base, client: client}
	if opts.CacheSize > 0 {
		h.cache = expirable.NewLRU[string, models.RawPayload](opts.CacheSize, nil, opts.CacheTTL)
	}
	return h, nil
}

// URL construit l'URL d'un endpoint, sans les paramètres vides.
func (h *HTTP) URL(endpoint Endpoint, params Params) string {
	u := h.base.ResolveReference(&url.URL{Path: endpoint.Path()})
	u.RawQuery = params.Values().Encode()
	return u.String()
}

// Fetch implémente Source.
func (h *HTTP) Fetch(ctx context.Context, endpoint Endpoint, params Params) (models.RawPayload, error) {
	key := string(endpoint) + "?" + params.Key()
	if h.cache != nil {
		if p, ok := h.cache.Get(key); ok {
			return p, nil
		}
	}

	target := h.URL(endpoint, params)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	log := logging.With("source")
	log.Debug().
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("payload reçu")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}
	p, err := payload.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	if h.cache != nil {
		h.cache.Add(key, p)
	}
	return p, nil
}
