package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Lukasvo/cookiedoo-filler/internal/models"
	"github.com/Lukasvo/cookiedoo-filler/internal/schemas"
	"github.com/Lukasvo/cookiedoo-filler/internal/shared"
)

// APIError is a non-2xx response from the recipe platform API.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: platform returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: platform returned status %d: %s", e.Op, e.Status, e.Body)
}

func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// UploadSignature is a signed grant for one image upload to the asset host.
// The platform signs the upload parameters server-side so the signing secret
// never reaches the client.
type UploadSignature struct {
	Signature    string `json:"signature"`
	Timestamp    int64  `json:"timestamp"`
	APIKey       string `json:"apiKey"`
	CloudName    string `json:"cloudName"`
	UploadPreset string `json:"uploadPreset"`
}

// CookidooClient talks to the platform's created-recipes API using a
// negotiated session credential. The zero credential is usable for nothing;
// install one with [CookidooClient.SetCredential] before calling operations.
type CookidooClient struct {
	baseURL    string
	locale     string
	httpClient *http.Client
	cred       *models.SessionCredential
}

// NewCookidooClient builds a client for one platform deployment and locale.
func NewCookidooClient(baseURL, locale string) *CookidooClient {
	return &CookidooClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		locale:     locale,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SetCredential installs the session cookies sent on every request.
func (c *CookidooClient) SetCredential(cred *models.SessionCredential) {
	c.cred = cred
}

// Authenticated reports whether a complete session credential is installed.
func (c *CookidooClient) Authenticated() bool {
	return c.cred != nil && c.cred.Complete()
}

// CreateRecipe creates an empty named recipe and returns its id.
func (c *CookidooClient) CreateRecipe(ctx context.Context, name string) (string, error) {
	const op = "create recipe"
	if err := c.requireAuth(op); err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%s: %w: recipe name is required", op, shared.ErrInvalidInput)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.recipePath(""), map[string]string{"name": name})
	if err != nil {
		return "", err
	}
	body, _, err := c.do(op, req)
	if err != nil {
		return "", err
	}
	if err := schemas.Validate(schemas.CreatedRecipe, body); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return created.ID, nil
}

// UpdateRecipe applies a partial update to a created recipe. The patch is
// validated locally first; the platform rejects malformed annotations with an
// opaque 400.
func (c *CookidooClient) UpdateRecipe(ctx context.Context, id string, patch *models.RecipePatch) (*models.RecipeRecord, error) {
	const op = "update recipe"
	if err := c.requireAuth(op); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("%s: %w: recipe id is required", op, shared.ErrInvalidInput)
	}
	if err := patch.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.recipePath(id), patch)
	if err != nil {
		return nil, err
	}
	body, status, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || len(bytes.TrimSpace(body)) == 0 {
		return &models.RecipeRecord{ID: id}, nil
	}
	if err := schemas.Validate(schemas.RecipeRecord, body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var record models.RecipeRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return &record, nil
}

// DeleteRecipe removes a created recipe.
func (c *CookidooClient) DeleteRecipe(ctx context.Context, id string) error {
	const op = "delete recipe"
	if err := c.requireAuth(op); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("%s: %w: recipe id is required", op, shared.ErrInvalidInput)
	}

	req, err := c.newRequest(ctx, http.MethodDelete, c.recipePath(id), nil)
	if err != nil {
		return err
	}
	_, _, err = c.do(op, req)
	return err
}

// RecipeExists probes whether a recipe id still resolves. A 404 is a normal
// answer here, not an error.
func (c *CookidooClient) RecipeExists(ctx context.Context, id string) (bool, error) {
	const op = "check recipe"
	if err := c.requireAuth(op); err != nil {
		return false, err
	}
	if id == "" {
		return false, fmt.Errorf("%s: %w: recipe id is required", op, shared.ErrInvalidInput)
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.recipePath(id), nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %v", op, shared.ErrNetwork, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return false, fmt.Errorf("%s: reading response: %w", op, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, &APIError{Op: op, Status: resp.StatusCode, Body: snippet(body)}
	}
}

// ImageSignature asks the platform to sign an image upload. params carries
// the exact parameter values that will accompany the upload; the signature
// only covers what was sent here.
func (c *CookidooClient) ImageSignature(ctx context.Context, params map[string]string) (*UploadSignature, error) {
	const op = "sign upload"
	if err := c.requireAuth(op); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.recipePath("")+"/asset-signature", params)
	if err != nil {
		return nil, err
	}
	body, _, err := c.do(op, req)
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.UploadSignature, body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sig UploadSignature
	if err := json.Unmarshal(body, &sig); err != nil {
		return nil, fmt.Errorf("%s: decoding response: %w", op, err)
	}
	return &sig, nil
}

func (c *CookidooClient) requireAuth(op string) error {
	if !c.Authenticated() {
		return fmt.Errorf("%s: %w: no session credential installed", op, shared.ErrMissingCredentials)
	}
	return nil
}

// recipePath builds the locale-scoped created-recipes path, optionally
// addressing one recipe.
func (c *CookidooClient) recipePath(id string) string {
	p := "/created-recipes/" + c.locale
	if id != "" {
		p += "/" + id
	}
	return p
}

// cookieHeader renders the session cookies the API expects, in the order the
// web client sends them.
func (c *CookidooClient) cookieHeader() string {
	return strings.Join([]string{
		LocaleCookie + "=" + c.locale,
		AuthFlagCookie + "=true",
		TokenCookie + "=" + c.cred.AuthToken,
		ProxyCookie + "=" + c.cred.ProxySession,
	}, "; ")
}

func (c *CookidooClient) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Cookie", c.cookieHeader())
	return req, nil
}

// do executes a request and returns the response body. Non-2xx statuses
// become an [APIError] carrying a body snippet.
func (c *CookidooClient) do(op string, req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w: %v", op, shared.ErrNetwork, err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: reading response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return body, resp.StatusCode, &APIError{Op: op, Status: resp.StatusCode, Body: snippet(body)}
	}
	return body, resp.StatusCode, nil
}
