// Copyright (C) 2025 stridemap contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package enrich implements the best-effort CVE detail lookup against an
// NVD-style HTTP API. Results are cached in a bounded LRU and requests are
// rate limited; any upstream failure degrades to "no data" for the caller.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/stridemap-dev/stridemap/dtos"
	"golang.org/x/time/rate"
)

const cacheSize = 4096

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *lru.Cache[string, *dtos.Enrichment]
}

func NewClient(baseURL string, httpClient *http.Client, requestsPerSecond float64) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cache, err := lru.New[string, *dtos.Enrichment](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		cache:      cache,
	}, nil
}

type cveResponse struct {
	CVEID      string   `json:"cveId"`
	Score      *float64 `json:"score"`
	CVSSVector *string  `json:"cvssVector"`
	CWEs       []string `json:"cwes"`
}

// Lookup returns the enrichment data for a CVE, nil when the CVE is unknown
// upstream. Cached results do not count against the rate limit.
func (c *Client) Lookup(ctx context.Context, cveID string) (*dtos.Enrichment, error) {
	if cached, ok := c.cache.Get(cveID); ok {
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/cves/%s", c.baseURL, url.PathEscape(cveID)), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "enrichment request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.cache.Add(cveID, nil)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("enrichment service returned status %d", resp.StatusCode)
	}

	var body cveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "could not decode enrichment response")
	}

	enrichment := &dtos.Enrichment{
		Score:      body.Score,
		CVSSVector: body.CVSSVector,
		CWEs:       body.CWEs,
	}
	c.cache.Add(cveID, enrichment)
	return enrichment, nil
}
