package omie

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"device-manager/core/utils"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client calls the Omie JSON API.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a client. Missing credentials are a construction error.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.AppKey) == "" || strings.TrimSpace(cfg.AppSecret) == "" {
		return nil, ErrMissingCredentials
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}, nil
}

// ListCustomers returns every registered customer.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	return list[Customer](ctx, c, customersCall)
}

// ListProducts returns every registered product.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	return list[Product](ctx, c, productsCall)
}

// ListOrders returns every sales order.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	return list[Order](ctx, c, ordersCall)
}

// list walks all pages of a listing call.
func list[T any](ctx context.Context, c *Client, lc listCall) ([]T, error) {
	var out []T

	for pageNum, total := 1, 1; pageNum <= total; pageNum++ {
		body, err := c.call(ctx, lc, pageParam{Page: pageNum, PageSize: c.cfg.PageSize, OnlyAPI: "N"})
		if err != nil {
			var f *FaultError
			if errors.As(err, &f) && f.NoRecords() {
				break
			}
			return nil, err
		}

		items, pages, err := decodePage[T](body, lc.listKey)
		if err != nil {
			return nil, fmt.Errorf("omie %s page %d: %w", lc.method, pageNum, err)
		}
		out = append(out, items...)
		total = pages

		c.logger.Debug("Fetched ERP page",
			zap.String("method", lc.method),
			zap.Int("page", pageNum),
			zap.Int("pages", pages),
			zap.Int("records", len(items)),
		)
	}

	return out, nil
}

func decodePage[T any](body []byte, listKey string) ([]T, int, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw map[string]json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, err
	}

	var pages any
	if v, ok := raw["total_de_paginas"]; ok {
		if err := json.Unmarshal(v, &pages); err != nil {
			return nil, 0, err
		}
	}

	var items []T
	if v, ok := raw[listKey]; ok {
		itemDec := json.NewDecoder(bytes.NewReader(v))
		itemDec.UseNumber()
		if err := itemDec.Decode(&items); err != nil {
			return nil, 0, err
		}
	}

	return items, utils.ToInt(pages), nil
}

// call posts one API request and returns the raw response body.
func (c *Client) call(ctx context.Context, lc listCall, param any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(request{
		Call:      lc.method,
		AppKey:    c.cfg.AppKey,
		AppSecret: c.cfg.AppSecret,
		Param:     []any{param},
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + lc.path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("omie %s: %w", lc.method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("omie %s: read body: %w", lc.method, err)
	}

	var f fault
	if json.Unmarshal(body, &f) == nil && f.Message != "" {
		return nil, &FaultError{Method: lc.method, Code: faultCode(f.Code), Message: f.Message}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Method: lc.method, StatusCode: resp.StatusCode}
	}

	return body, nil
}
