// Package plannerclient is the HTTP client of the planner API. It implements
// session.Boundary and maps response statuses onto session error kinds.
package plannerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fairyhunter13/project-planner/internal/model"
	"github.com/fairyhunter13/project-planner/internal/session"
)

const defaultTimeout = 90 * time.Second

// Client calls the planner API on behalf of one signed-in user.
type Client struct {
	baseURL  string
	token    string
	adminKey string
	http     *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. Timeouts surface as transport errors.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithAdminKey sets the key sent to the coupon administration endpoints.
func WithAdminKey(key string) Option {
	return func(c *Client) { c.adminKey = key }
}

// New creates a Client for baseURL authenticated with a bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ session.Boundary = (*Client)(nil)

// FetchBalance implements session.BalanceFetcher.
func (c *Client) FetchBalance(ctx context.Context) (int, error) {
	var resp model.BalanceResponse
	if err := c.do(ctx, http.MethodGet, "/api/tokens", nil, &resp, mapStatus); err != nil {
		return 0, err
	}
	return resp.TokenCount, nil
}

// GenerateIdeas implements session.IdeaGenerator.
func (c *Client) GenerateIdeas(ctx context.Context, req model.CreationRequest) ([]model.Idea, error) {
	var resp model.GenerateIdeasResponse
	if err := c.do(ctx, http.MethodPost, "/api/generate-ideas", req, &resp, mapStatus); err != nil {
		return nil, err
	}
	if resp.Ideas == nil {
		return []model.Idea{}, nil
	}
	return resp.Ideas, nil
}

// RedeemCoupon implements session.CouponRedeemer.
func (c *Client) RedeemCoupon(ctx context.Context, code string) (session.Redemption, error) {
	var resp model.ApplyCouponResponse
	body := model.ApplyCouponRequest{Code: code}
	if err := c.do(ctx, http.MethodPost, "/api/apply-coupon", body, &resp, mapRedemptionStatus); err != nil {
		return session.Redemption{}, err
	}
	return session.Redemption{NewBalance: resp.TokenCount, Message: resp.Success}, nil
}

// FetchCreations implements session.CreationsFetcher.
func (c *Client) FetchCreations(ctx context.Context) ([]model.Creation, error) {
	var resp model.CreationsResponse
	if err := c.do(ctx, http.MethodGet, "/api/creations", nil, &resp, mapStatus); err != nil {
		return nil, err
	}
	return resp.Creations, nil
}

// CreateCoupon creates a coupon through the admin endpoint.
func (c *Client) CreateCoupon(ctx context.Context, req model.CreateCouponRequest) error {
	return c.do(ctx, http.MethodPost, "/api/coupons", req, nil, mapStatus)
}

// GetCoupon reads a coupon and its redeemers through the admin endpoint.
func (c *Client) GetCoupon(ctx context.Context, name string) (*model.CouponResponse, error) {
	var resp model.CouponResponse
	if err := c.do(ctx, http.MethodGet, "/api/coupons/"+url.PathEscape(name), nil, &resp, mapStatus); err != nil {
		return nil, err
	}
	return &resp, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, mapErr func(int, string) error) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return session.NewError(session.KindValidation, "could not encode request", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return session.NewError(session.KindTransport, "could not build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.adminKey != "" && strings.HasPrefix(path, "/api/coupons") {
		req.Header.Set("X-Admin-Key", c.adminKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return session.NewError(session.KindTransport, transportNotice(err), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return session.NewError(session.KindTransport, "the response could not be read", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		return mapErr(resp.StatusCode, eb.Error)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return session.NewError(session.KindTransport, "the server sent an unexpected response", err)
	}
	return nil
}

func mapStatus(status int, message string) error {
	cause := fmt.Errorf("status %d", status)
	switch status {
	case http.StatusBadRequest:
		return session.NewError(session.KindValidation, orDefault(message, "the request was rejected"), cause)
	case http.StatusUnauthorized, http.StatusForbidden:
		return session.NewError(session.KindAuthorization, orDefault(message, "your session has expired, please sign in again"), cause)
	case http.StatusPaymentRequired:
		return session.NewError(session.KindAuthorization, orDefault(message, "not enough tokens"), cause)
	}
	return session.NewError(session.KindTransport, orDefault(message, "the server could not complete the request"), cause)
}

func mapRedemptionStatus(status int, message string) error {
	cause := fmt.Errorf("status %d", status)
	switch status {
	case http.StatusNotFound:
		return session.NewError(session.KindInvalidCode, orDefault(message, "invalid coupon code"), cause)
	case http.StatusConflict:
		return session.NewError(session.KindAlreadyRedeemed, orDefault(message, "coupon already redeemed"), cause)
	case http.StatusGone:
		return session.NewError(session.KindExpired, orDefault(message, "coupon has expired"), cause)
	}
	return mapStatus(status, message)
}

func transportNotice(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "the request timed out, please try again"
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return "the request timed out, please try again"
	}
	return "the planner service is unreachable"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
