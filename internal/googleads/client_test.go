package googleads

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{
		DeveloperToken:  "dev-token",
		LoginCustomerID: "111-222-3333",
		BaseURL:         srv.URL,
		TokenSource:     oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "access"}),
		RetryMax:        2,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestSearchPaginates(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/v19/customers/1234567890/googleAds:search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("developer-token"); got != "dev-token" {
			t.Errorf("developer-token = %q", got)
		}
		if got := r.Header.Get("login-customer-id"); got != "1112223333" {
			t.Errorf("login-customer-id = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer access" {
			t.Errorf("authorization = %q", got)
		}
		var req searchRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.PageToken == "" {
			_, _ = io.WriteString(w, `{"results":[{"campaign":{"id":"1","name":"A"},"metrics":{"costMicros":"1500000","ctr":0.25}}],"nextPageToken":"p2"}`)
			return
		}
		_, _ = io.WriteString(w, `{"results":[{"campaign":{"id":"2","name":"B"},"metrics":{"impressions":"42"}}]}`)
	})

	rows, err := c.Search(context.Background(), "123-456-7890", "SELECT campaign.id FROM campaign")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 2 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 rows over 2 calls, got %d rows %d calls", len(rows), calls)
	}
	if rows[0].Int("metrics.cost_micros") != 1_500_000 {
		t.Fatalf("cost_micros = %d", rows[0].Int("metrics.cost_micros"))
	}
	if rows[0].Float("metrics.ctr") != 0.25 {
		t.Fatalf("ctr = %v", rows[0].Float("metrics.ctr"))
	}
	if rows[1].String("campaign.name") != "B" || rows[1].Int("metrics.impressions") != 42 {
		t.Fatalf("unexpected second row: %v", rows[1])
	}
	if rows[1].Int("metrics.clicks") != 0 {
		t.Fatalf("missing metric should be zero")
	}
}

func TestSearchRetriesServerErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"results":[]}`)
	})
	rows, err := c.Search(context.Background(), "1", "SELECT customer.id FROM customer")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(rows) != 0 || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected retry, got rows=%d calls=%d", len(rows), calls)
	}
}

func TestAPIErrorClassification(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"The caller does not have permission","status":"PERMISSION_DENIED",
			"details":[{"errors":[{"errorCode":{"authorizationError":"DEVELOPER_TOKEN_NOT_APPROVED"},"message":"The developer token is only approved for use with test accounts."}],"requestId":"req-1"}]}}`)
	})
	_, err := c.Search(context.Background(), "1", "SELECT customer.id FROM customer")
	if !errors.Is(err, ErrAuthorization) {
		t.Fatalf("expected ErrAuthorization, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("authorization error must not match ErrNotFound")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError")
	}
	if apiErr.RequestID != "req-1" || len(apiErr.Codes) != 1 || apiErr.Codes[0] != "DEVELOPER_TOKEN_NOT_APPROVED" {
		t.Fatalf("unexpected error fields: %+v", apiErr)
	}
	if !strings.Contains(Hint(err), "Basic or Standard access") {
		t.Fatalf("unexpected hint: %q", Hint(err))
	}
}

func TestParseAPIErrorNotFound(t *testing.T) {
	e := parseAPIError(http.StatusBadRequest, []byte(`{"error":{"code":400,"message":"Request contains an invalid argument.","status":"INVALID_ARGUMENT",
		"details":[{"errors":[{"errorCode":{"requestError":"RESOURCE_NOT_FOUND"},"message":"Resource was not found."}]}]}}`))
	if e.Kind != KindNotFound || !errors.Is(e, ErrNotFound) {
		t.Fatalf("expected not found, got %v", e.Kind)
	}
	if e.Message != "Resource was not found." {
		t.Fatalf("message = %q", e.Message)
	}
	if e.Hint == "" {
		t.Fatalf("expected active-account hint")
	}

	plain := parseAPIError(http.StatusInternalServerError, []byte("boom"))
	if plain.Kind != KindOther || plain.Message != "boom" || plain.Hint != "" {
		t.Fatalf("unexpected generic error: %+v", plain)
	}
}

func TestMutate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/customers/42/googleAds:mutate") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		ops, _ := body["mutateOperations"].([]any)
		if len(ops) != 2 {
			t.Errorf("expected 2 operations, got %d", len(ops))
		}
		if body["validateOnly"] != true {
			t.Errorf("validateOnly not forwarded")
		}
		first, _ := ops[0].(map[string]any)
		if _, ok := first["campaignBudgetOperation"]; !ok {
			t.Errorf("first op = %v", first)
		}
		_, _ = io.WriteString(w, `{"mutateOperationResponses":[{"campaignBudgetResult":{"resourceName":"customers/42/campaignBudgets/7"}},{"campaignResult":{"resourceName":"customers/42/campaigns/9"}}]}`)
	})

	res, err := c.Mutate(context.Background(), "42", []Operation{
		{Entity: EntityCampaignBudget, Create: map[string]any{"name": "b"}},
		{Entity: EntityCampaign, Update: map[string]any{"resourceName": "customers/42/campaigns/9", "status": "PAUSED"}, UpdateMask: []string{"status"}},
	}, true)
	if err != nil {
		t.Fatalf("mutate: %v", err)
	}
	if len(res.ResourceNames) != 2 || res.ResourceNames[1] != "customers/42/campaigns/9" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestListAccessibleCustomers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v19/customers:listAccessibleCustomers" || r.Method != http.MethodGet {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("login-customer-id") != "" {
			t.Errorf("login-customer-id must not be sent")
		}
		_, _ = io.WriteString(w, `{"resourceNames":["customers/1","customers/22"]}`)
	})
	ids, err := c.ListAccessibleCustomers(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 2 || ids[0] != "1" || ids[1] != "22" {
		t.Fatalf("ids = %v", ids)
	}
}

func TestRefreshTokenFlow(t *testing.T) {
	var tokenCalls int32
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&tokenCalls, 1)
		_ = r.ParseForm()
		if r.Form.Get("refresh_token") != "refresh" || r.Form.Get("client_id") != "cid" {
			t.Errorf("unexpected token form: %v", r.Form)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"minted","token_type":"Bearer","expires_in":3600}`)
	}))
	defer tokenSrv.Close()

	apiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer minted" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = io.WriteString(w, `{"resourceNames":[]}`)
	}))
	defer apiSrv.Close()

	c, err := New(Config{
		DeveloperToken: "d",
		ClientID:       "cid",
		ClientSecret:   "secret",
		RefreshToken:   "refresh",
		BaseURL:        apiSrv.URL,
		TokenURL:       tokenSrv.URL,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := c.ListAccessibleCustomers(context.Background()); err != nil {
			t.Fatalf("list: %v", err)
		}
	}
	if atomic.LoadInt32(&tokenCalls) != 1 {
		t.Fatalf("expected cached token, got %d token calls", tokenCalls)
	}
}

func TestNewRequiresCredentials(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatalf("expected developer token error")
	}
	if _, err := New(Config{DeveloperToken: "d"}); err == nil {
		t.Fatalf("expected oauth credential error")
	}
}

func TestOperationJSON(t *testing.T) {
	b, err := json.Marshal(Operation{
		Entity:     EntityAdGroupCriterion,
		Update:     map[string]any{"resourceName": "x"},
		UpdateMask: []string{"cpc_bid_micros", "network_settings.target_search_network"},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"adGroupCriterionOperation":{"update":{"resourceName":"x"},"updateMask":"cpcBidMicros,networkSettings.targetSearchNetwork"}}`
	if string(b) != want {
		t.Fatalf("got %s\nwant %s", b, want)
	}
	if _, err := json.Marshal(Operation{Entity: EntityCampaign}); err == nil {
		t.Fatalf("expected error for empty operation")
	}
	if IDFromResourceName("customers/1/adGroupCriteria/5~77") != "77" {
		t.Fatalf("IDFromResourceName")
	}
}
