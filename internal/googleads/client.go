// Package googleads is a small REST client for the Google Ads API: paginated
// GAQL search, batched mutate and accessible-customer listing.
package googleads

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

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultAPIVersion = "v19"
	DefaultBaseURL    = "https://googleads.googleapis.com"
	DefaultTokenURL   = "https://oauth2.googleapis.com/token"
)

// Observer receives one callback per upstream request.
type Observer interface {
	ObserveUpstream(operation, status string, d time.Duration)
}

// Config configures a Client.
type Config struct {
	DeveloperToken  string
	ClientID        string
	ClientSecret    string
	RefreshToken    string
	LoginCustomerID string

	APIVersion   string
	BaseURL      string
	TokenURL     string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	// TokenSource overrides the refresh-token flow when set.
	TokenSource oauth2.TokenSource

	Logger   *logrus.Entry
	Observer Observer
}

// Client talks to the Google Ads REST API.
type Client struct {
	http            *retryablehttp.Client
	base            string
	developerToken  string
	loginCustomerID string
	log             *logrus.Entry
	observer        Observer
}

// New builds a client. Access tokens are minted from the refresh token on
// demand and cached until expiry.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.DeveloperToken) == "" {
		return nil, errors.New("googleads: developer token is required")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		cfg.Logger = logrus.NewEntry(l)
	}

	ts := cfg.TokenSource
	if ts == nil {
		if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
			return nil, errors.New("googleads: client id, client secret and refresh token are required")
		}
		oc := &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     oauth2.Endpoint{TokenURL: cfg.TokenURL, AuthStyle: oauth2.AuthStyleInParams},
			Scopes:       []string{"https://www.googleapis.com/auth/adwords"},
		}
		tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, cleanhttp.DefaultPooledClient())
		ts = oc.TokenSource(tokenCtx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		rc.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		rc.RetryWaitMax = cfg.RetryWaitMax
	}
	rc.Logger = leveledLogger{cfg.Logger}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &oauth2.Transport{Source: ts, Base: cleanhttp.DefaultPooledTransport()},
	}

	return &Client{
		http:            rc,
		base:            strings.TrimSuffix(cfg.BaseURL, "/") + "/" + strings.Trim(cfg.APIVersion, "/"),
		developerToken:  cfg.DeveloperToken,
		loginCustomerID: strings.ReplaceAll(cfg.LoginCustomerID, "-", ""),
		log:             cfg.Logger,
		observer:        cfg.Observer,
	}, nil
}

type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []Row  `json:"results"`
	NextPageToken string `json:"nextPageToken"`
}

// Search runs a GAQL query and follows pagination until every row is read.
func (c *Client) Search(ctx context.Context, customerID, query string) ([]Row, error) {
	customerID = strings.ReplaceAll(customerID, "-", "")
	url := fmt.Sprintf("%s/customers/%s/googleAds:search", c.base, customerID)

	var rows []Row
	token := ""
	for {
		var page searchResponse
		if err := c.do(ctx, "search", customerID, http.MethodPost, url, searchRequest{Query: query, PageToken: token}, true, &page); err != nil {
			return nil, err
		}
		rows = append(rows, page.Results...)
		if page.NextPageToken == "" || page.NextPageToken == token {
			return rows, nil
		}
		token = page.NextPageToken
	}
}

type mutateRequest struct {
	MutateOperations []Operation `json:"mutateOperations"`
	PartialFailure   bool        `json:"partialFailure"`
	ValidateOnly     bool        `json:"validateOnly"`
}

type mutateResponse struct {
	MutateOperationResponses []map[string]json.RawMessage `json:"mutateOperationResponses"`
}

// MutateResult lists the resource names returned per operation, in order.
type MutateResult struct {
	ResourceNames []string
}

// Mutate applies ops atomically. With validateOnly the request is checked
// upstream without being committed.
func (c *Client) Mutate(ctx context.Context, customerID string, ops []Operation, validateOnly bool) (MutateResult, error) {
	if len(ops) == 0 {
		return MutateResult{}, errors.New("googleads: no operations to apply")
	}
	customerID = strings.ReplaceAll(customerID, "-", "")
	url := fmt.Sprintf("%s/customers/%s/googleAds:mutate", c.base, customerID)

	var resp mutateResponse
	if err := c.do(ctx, "mutate", customerID, http.MethodPost, url, mutateRequest{MutateOperations: ops, ValidateOnly: validateOnly}, true, &resp); err != nil {
		return MutateResult{}, err
	}

	var out MutateResult
	for _, r := range resp.MutateOperationResponses {
		for _, raw := range r {
			var res struct {
				ResourceName string `json:"resourceName"`
			}
			if json.Unmarshal(raw, &res) == nil && res.ResourceName != "" {
				out.ResourceNames = append(out.ResourceNames, res.ResourceName)
			}
		}
	}
	return out, nil
}

// ListAccessibleCustomers returns the customer ids the credentials can reach.
func (c *Client) ListAccessibleCustomers(ctx context.Context) ([]string, error) {
	var resp struct {
		ResourceNames []string `json:"resourceNames"`
	}
	if err := c.do(ctx, "list_accessible_customers", "", http.MethodGet, c.base+"/customers:listAccessibleCustomers", nil, false, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(resp.ResourceNames))
	for _, rn := range resp.ResourceNames {
		ids = append(ids, strings.TrimPrefix(rn, "customers/"))
	}
	return ids, nil
}

func (c *Client) do(ctx context.Context, op, customerID, method, url string, body any, withLogin bool, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		payload = b
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("developer-token", c.developerToken)
	if withLogin && c.loginCustomerID != "" {
		req.Header.Set("login-customer-id", c.loginCustomerID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	status := "error"
	if resp != nil {
		status = fmt.Sprintf("%d", resp.StatusCode)
	}
	c.observe(op, status, time.Since(start))
	log := c.log.WithFields(logrus.Fields{"operation": op, "customer_id": customerID, "status": status, "duration": time.Since(start).String()})
	if err != nil {
		log.WithError(err).Warn("upstream request failed")
		return fmt.Errorf("%s request: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := parseAPIError(resp.StatusCode, raw)
		log.WithField("codes", strings.Join(apiErr.Codes, ",")).Warn("upstream error")
		return apiErr
	}
	log.Debug("upstream request ok")

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

func (c *Client) observe(op, status string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveUpstream(op, status, d)
	}
}

// leveledLogger adapts logrus to retryablehttp's LeveledLogger.
type leveledLogger struct{ e *logrus.Entry }

func (l leveledLogger) fields(kv []interface{}) *logrus.Entry {
	e := l.e
	for i := 0; i+1 < len(kv); i += 2 {
		e = e.WithField(fmt.Sprint(kv[i]), kv[i+1])
	}
	return e
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.fields(kv).Error(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.fields(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.fields(kv).Debug(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.fields(kv).Warn(msg) }
