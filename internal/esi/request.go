package esi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// pagesHeader carries the total page count on paginated responses.
const pagesHeader = "x-pages"

// doRequest acquires one concurrency permit, performs a GET and returns the
// raw body plus the total page count from the x-pages header (0 if absent).
// The permit is held for the network round trip only and released before the
// caller decodes the body.
func (c *Client) doRequest(ctx context.Context, path string) (body []byte, pages int, err error) {
	if err := c.permits.Acquire(ctx, 1); err != nil {
		return nil, 0, &Error{Kind: KindConnection, Path: path, Err: err}
	}
	defer c.permits.Release(1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, 0, &Error{Kind: KindConnection, Path: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, &Error{Kind: KindConnection, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, &Error{Kind: KindConnection, Path: path, Err: err}
	}

	// Classify before decoding. 420 is the upstream error-limit signal and
	// must not be folded into the generic error case.
	if resp.StatusCode == 420 {
		return nil, 0, &Error{Kind: KindRateLimited, Status: resp.StatusCode, Path: path}
	}
	if resp.StatusCode >= 400 {
		return nil, 0, &Error{Kind: KindErrorResponse, Status: resp.StatusCode, Path: path}
	}

	if h := resp.Header.Get(pagesHeader); h != "" {
		if n, perr := strconv.Atoi(h); perr == nil {
			pages = n
		}
	}

	return body, pages, nil
}

// get performs a GET and decodes the body into result.
func (c *Client) get(ctx context.Context, path string, result any) error {
	body, _, err := c.doRequest(ctx, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, result); err != nil {
		return &Error{Kind: KindDecode, Path: path, Err: err}
	}

	return nil
}

// getPaginated fetches page 1 of basePath, reads the total page count from
// the x-pages header and fetches pages 2..N concurrently, still bounded by
// the shared permit pool. A missing header is a protocol error (NoPages).
// Results are concatenated; order across pages is not significant for any
// paginated market endpoint.
func getPaginated[T any](ctx context.Context, c *Client, basePath string) ([]T, error) {
	firstPath := fmt.Sprintf("%s?page=1", basePath)

	body, pages, err := c.doRequest(ctx, firstPath)
	if err != nil {
		return nil, err
	}
	if pages < 1 {
		return nil, &Error{Kind: KindNoPages, Path: firstPath}
	}

	var first []T
	if err := json.Unmarshal(body, &first); err != nil {
		return nil, &Error{Kind: KindDecode, Path: firstPath, Err: err}
	}
	if pages == 1 {
		return first, nil
	}

	// Index by page so concatenation needs no coordination.
	paged := make([][]T, pages+1)
	paged[1] = first

	g, gctx := errgroup.WithContext(ctx)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			var items []T
			if err := c.get(gctx, fmt.Sprintf("%s?page=%d", basePath, page), &items); err != nil {
				return err
			}
			paged[page] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range paged {
		total += len(p)
	}
	all := make([]T, 0, total)
	for _, p := range paged {
		all = append(all, p...)
	}

	return all, nil
}
