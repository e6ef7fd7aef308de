package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pathscategories/resolver/internal/config"
	"pathscategories/resolver/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// CategoryClient fetches the raw category record set. It never caches; every call hits the source.
type CategoryClient interface {
	FetchCategories(ctx context.Context) ([]domain.CategoryRecord, error)
}

type categoryClient struct {
	rl         ratelimit.Limiter
	config     config.CategoriesConfig
	httpClient *resty.Client
}

func NewCategoryClient(cfg config.CategoriesConfig) CategoryClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Accept", acceptHeader(cfg.Source))

	if cfg.APIToken != "" {
		client.SetAuthToken(cfg.APIToken)
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &categoryClient{
		rl:         rl,
		config:     cfg,
		httpClient: client,
	}
}

func acceptHeader(source string) string {
	if source == config.SourceHTML {
		return "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8"
	}
	return "application/json"
}

func (c *categoryClient) FetchCategories(ctx context.Context) ([]domain.CategoryRecord, error) {
	body, err := c.fetch(ctx, c.config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	var records []domain.CategoryRecord
	switch c.config.Source {
	case config.SourceHTML:
		records, err = parseCatalogTree(body)
	default:
		records, err = decodeRecords([]byte(body))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}

	log.Debugf("Fetched %d category records from %s", len(records), c.config.Endpoint)
	return records, nil
}

func (c *categoryClient) fetch(ctx context.Context, endpoint string) (string, error) {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}

	if resp.IsError() {
		return "", fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return resp.String(), nil
}

// decodeRecords accepts a bare array or a {"data": [...]} envelope. An empty or null body means the
// record set is not available yet and decodes to no records.
func decodeRecords(body []byte) ([]domain.CategoryRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []domain.CategoryRecord{}, nil
	}

	if trimmed[0] == '[' {
		records := make([]domain.CategoryRecord, 0)
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		return records, nil
	}

	var envelope struct {
		Data *[]domain.CategoryRecord `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode records envelope: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("response has neither a records array nor a data field")
	}
	return *envelope.Data, nil
}
