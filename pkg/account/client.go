// Package account is the customer dashboard's client: a typed API client plus optimistic,
// per-resource state for profile, address book, aesthetic folder and service bookings.
package account

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Ramsey-B/peony/pkg/booking"
	"github.com/Ramsey-B/peony/pkg/geocode"
	"github.com/Ramsey-B/peony/pkg/httpclient"
	"github.com/Ramsey-B/peony/pkg/models"
	"github.com/tidwall/gjson"
)

// APIError is a non-2xx answer from the account API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("account api returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("account api returned %d", e.StatusCode)
}

type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "invalid input: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type ClientConfig struct {
	BaseURL string
	// Token is sent as a bearer token when set. Cookie sessions ride on the http client's jar.
	Token  string
	Locale string
}

// Client calls the account endpoints.
type Client struct {
	http    *httpclient.Client
	baseURL string
	headers map[string]string
}

func NewClient(httpClient *httpclient.Client, cfg ClientConfig) *Client {
	headers := map[string]string{}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}
	if cfg.Locale != "" {
		headers["Accept-Language"] = cfg.Locale
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		headers: headers,
	}
}

func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) PatchUser(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error) {
	var user models.User
	if err := c.call(ctx, http.MethodPatch, "/api/users/"+url.PathEscape(id), patch, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/users/logout", nil, nil)
}

func (c *Client) GetAestheticFolder(ctx context.Context) (*models.AestheticFolder, error) {
	var folder models.AestheticFolder
	if err := c.call(ctx, http.MethodGet, "/api/account/aesthetic-folder", nil, &folder); err != nil {
		return nil, err
	}
	return &folder, nil
}

func (c *Client) PatchAestheticFolder(ctx context.Context, folder models.AestheticFolder) (*models.AestheticFolder, error) {
	var saved models.AestheticFolder
	if err := c.call(ctx, http.MethodPatch, "/api/account/aesthetic-folder", folder, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders := []models.Order{}
	if err := c.call(ctx, http.MethodGet, "/api/account/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) ListServiceSessions(ctx context.Context) ([]models.ServiceSession, error) {
	sessions := []models.ServiceSession{}
	if err := c.call(ctx, http.MethodGet, "/api/account/service-sessions", nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) RequestDate(ctx context.Context, sessionID string, action booking.Action) (*models.ServiceSession, error) {
	var session models.ServiceSession
	path := "/api/account/service-sessions/" + url.PathEscape(sessionID) + "/request-date"
	if err := c.call(ctx, http.MethodPatch, path, action, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) LookupAddress(ctx context.Context, q string) ([]geocode.Suggestion, error) {
	suggestions := []geocode.Suggestion{}
	path := "/api/account/address-lookup?q=" + url.QueryEscape(q)
	if err := c.call(ctx, http.MethodGet, path, nil, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.http.DoJSON(ctx, method, c.baseURL+path, c.headers, body)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil || len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// errorMessage pulls a human message out of an error body without committing to its shape.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range []string{"message", "error.message", "error"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return ""
}
