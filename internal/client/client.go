// Package client calls a running aspirations server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/api"
	"github.com/mhusman123/Student-Aspirations-Predictor-using-Machine-Learning/internal/profile"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	http *resty.Client
}

// New returns a client for the server at baseURL.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("server url is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &Client{http: http}, nil
}

// Predict submits a profile and returns the ranked careers.
func (c *Client) Predict(ctx context.Context, sp profile.StudentProfile) (*api.Prediction, error) {
	var out api.Success[api.Prediction]
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(sp).
		Post(api.PredictionsPath)
	if err != nil {
		return nil, fmt.Errorf("post prediction: %w", err)
	}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// Model describes the model loaded by the server.
func (c *Client) Model(ctx context.Context) (*api.Model, error) {
	var out api.Success[api.Model]
	resp, err := c.http.R().SetContext(ctx).Get(api.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("get model: %w", err)
	}
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

func decode(resp *resty.Response, out any) error {
	if resp.IsError() {
		var failure api.Failure
		if err := json.Unmarshal(resp.Body(), &failure); err != nil {
			return fmt.Errorf("server returned status %d", resp.StatusCode())
		}
		return failure.Err(resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
