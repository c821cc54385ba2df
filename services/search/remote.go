package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"

	"github.com/meghashyamc/migemosearch/logger"
)

// Remote searches through the index daemon's HTTP API.
type Remote struct {
	logger  logger.Logger
	baseURL string
	client  *http.Client
}

type remoteResponse struct {
	Data struct {
		Results []Hit  `json:"results"`
		Total   uint64 `json:"total"`
	} `json:"data"`
	Errors []string `json:"errors"`
}

func NewRemote(logger logger.Logger, baseURL string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &Remote{
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (r *Remote) Search(ctx context.Context, text string, maxCount int) ([]Hit, error) {
	params := url.Values{}
	params.Set("query", text)
	params.Set("max", strconv.Itoa(maxCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not create search request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if isUnreachable(err) {
			r.logger.Warn("index daemon is unreachable", "url", r.baseURL, "err", err.Error())
			return nil, fmt.Errorf("%w: %s", ErrBackendUnavailable, err.Error())
		}
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusServiceUnavailable {
		return nil, ErrBackendUnavailable
	}

	var body remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("could not decode search response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed with status %d: %s", resp.StatusCode, strings.Join(body.Errors, "; "))
	}

	return body.Data.Results, nil
}

// Reset drops kept-alive connections so the next search opens a fresh session.
func (r *Remote) Reset() {
	r.client.CloseIdleConnections()
}

func isUnreachable(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}
