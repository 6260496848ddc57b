// Package client is the REST client for the board API, used by the
// reservation flow and by anything else scripting the board.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"millionGridAPI/internal/payment"
	"millionGridAPI/internal/pixel"
)

type Client struct {
	baseURL string
	hc      *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

// ListPixels fetches every approved pixel, oldest first.
func (c *Client) ListPixels(ctx context.Context) ([]pixel.GridItem, error) {
	var items []pixel.GridItem
	if err := c.do(ctx, http.MethodGet, "/api/pixels", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreatePixel persists a new pixel; the server forces status to pending.
func (c *Client) CreatePixel(ctx context.Context, it *pixel.GridItem) (*pixel.GridItem, error) {
	var created pixel.GridItem
	if err := c.do(ctx, http.MethodPost, "/api/pixels", it, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// CreatePixCharge asks the server to create a PIX charge for a pixel.
func (c *Client) CreatePixCharge(ctx context.Context, req *payment.PixRequest) (*payment.PixCharge, error) {
	var charge payment.PixCharge
	if err := c.do(ctx, http.MethodPost, "/api/payments/pix", req, &charge); err != nil {
		return nil, err
	}
	return &charge, nil
}

// PixelStatus reads the pixel's current payment status.
func (c *Client) PixelStatus(ctx context.Context, id string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/pixels/"+id+"/status", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// DeletePixel discards a pending pixel. The server's status guard surfaces
// as pixel.ErrNotPending so callers can tell "already approved" apart from
// other failures.
func (c *Client) DeletePixel(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/pixels/"+id, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return pixel.ErrNotFound
		case http.StatusBadRequest:
			if method == http.MethodDelete {
				return pixel.ErrNotPending
			}
		case http.StatusConflict:
			return pixel.ErrOverlap
		}
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
