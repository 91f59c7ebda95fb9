package chimera

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to a chimerad backend over HTTP. It implements [Generator],
// [Snapshots], and [PromptIdeas]. A transport failure and a server-reported
// error payload are deliberately indistinguishable to callers: both come
// back as a plain error and roll back the same way.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the backend at base, e.g.
// "http://localhost:5001". Generation calls can take a while, so the
// default HTTP client timeout is generous.
func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

// Base returns the backend base URL. Useful for resolving relative image
// references returned by the generation endpoints.
func (c *Client) Base() string { return c.base }

type creationResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Error    string `json:"error"`
}

// Generate requests a brand-new animal from a text prompt.
func (c *Client) Generate(ctx context.Context, description string) (Creation, error) {
	var res creationResponse
	err := c.post(ctx, "/api/generate", map[string]string{"prompt": description}, &res)
	if err != nil {
		return Creation{}, err
	}
	return Creation{ID: res.ID, Name: res.Name, ImageRef: res.ImageURL}, nil
}

// Breed requests offspring of two existing animals.
func (c *Client) Breed(ctx context.Context, parent1ID, parent2ID, parent1Name, parent2Name string) (Creation, error) {
	body := map[string]string{
		"parent1_id":   parent1ID,
		"parent2_id":   parent2ID,
		"parent1_name": parent1Name,
		"parent2_name": parent2Name,
	}
	var res creationResponse
	if err := c.post(ctx, "/api/breed", body, &res); err != nil {
		return Creation{}, err
	}
	return Creation{ID: res.ID, Name: res.Name, ImageRef: res.ImageURL}, nil
}

// RandomPrompt fetches a creature description suggestion.
func (c *Client) RandomPrompt(ctx context.Context) (string, error) {
	var res struct {
		Prompt string `json:"prompt"`
		Error  string `json:"error"`
	}
	if err := c.get(ctx, "/api/random-prompt", &res); err != nil {
		return "", err
	}
	return res.Prompt, nil
}

// Load fetches the persisted scene. An absent snapshot comes back empty,
// not as an error.
func (c *Client) Load(ctx context.Context) (SceneSnapshot, error) {
	var snap SceneSnapshot
	if err := c.get(ctx, "/api/load-state", &snap); err != nil {
		return SceneSnapshot{}, err
	}
	return snap, nil
}

// Save pushes the whole scene to the backend.
func (c *Client) Save(ctx context.Context, snap SceneSnapshot) error {
	var res struct {
		Error string `json:"error"`
	}
	return c.post(ctx, "/api/save-state", snap, &res)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do executes the request and decodes the JSON response. Non-2xx responses
// prefer the server's {error} message when one is present.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%s: %s", req.URL.Path, e.Error)
		}
		return fmt.Errorf("%s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", req.URL.Path, err)
	}
	return nil
}
