package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/beaconcdp/beacon/config"
)

// Message is the vendor's representation of an SMS message.
type Message struct {
	SID          string `json:"sid"`
	To           string `json:"to"`
	From         string `json:"from"`
	Body         string `json:"body"`
	Status       string `json:"status"` // queued, sent, delivered, failed
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	DateCreated  string `json:"date_created,omitempty"`
}

// APIError is a non-2xx response from the vendor.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("messaging api error %d: %s", e.StatusCode, e.Message)
}

type ListOptions struct {
	To    string
	Limit int
}

type listResponse struct {
	Messages []*Message `json:"messages"`
}

// Client is a thin REST client for the SMS vendor. Transient failures
// (429 and 5xx) are retried with backoff before giving up.
type Client struct {
	baseURL    string
	accountSID string
	authToken  string
	httpClient *http.Client

	maxRetries int
	retryWait  time.Duration
}

func NewClient(cfg *config.MessagingConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		maxRetries: 3,
		retryWait:  500 * time.Millisecond,
	}
}

func (c *Client) SendMessage(ctx context.Context, to, from, body string) (*Message, error) {
	payload := map[string]string{"to": to, "from": from, "body": body}
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages", c.baseURL, c.accountSID)

	msg := &Message{}
	if err := c.do(ctx, http.MethodPost, endpoint, payload, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *Client) GetMessage(ctx context.Context, sid string) (*Message, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages/%s", c.baseURL, c.accountSID, url.PathEscape(sid))

	msg := &Message{}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (c *Client) ListMessages(ctx context.Context, opts ListOptions) ([]*Message, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages", c.baseURL, c.accountSID)

	params := url.Values{}
	if opts.To != "" {
		params.Set("To", opts.To)
	}
	if opts.Limit > 0 {
		params.Set("PageSize", strconv.Itoa(opts.Limit))
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	resp := &listResponse{}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload, out any) error {
	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	var lastErr error
	wait := c.retryWait
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}

		var reqBody *bytes.Reader
		if bodyBytes != nil {
			reqBody = bytes.NewReader(bodyBytes)
		} else {
			reqBody = bytes.NewReader(nil)
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.accountSID, c.authToken)
		if bodyBytes != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: "transient vendor error"}
			continue
		}

		if resp.StatusCode >= 400 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Message: "request failed"}
			json.NewDecoder(resp.Body).Decode(apiErr)
			resp.Body.Close()
			return apiErr
		}

		err = json.NewDecoder(resp.Body).Decode(out)
		resp.Body.Close()
		return err
	}
	return lastErr
}
