package tools

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

type mutateCall struct {
	customerID   string
	ops          []googleads.Operation
	validateOnly bool
}

// fakeAds records every upstream call. search picks the rows for a query.
type fakeAds struct {
	mu         sync.Mutex
	accessible []string
	search     func(customerID, query string) ([]googleads.Row, error)
	queries    []string
	mutates    []mutateCall
	mutateErr  error
	result     googleads.MutateResult
}

func (f *fakeAds) Search(_ context.Context, customerID, query string) ([]googleads.Row, error) {
	f.mu.Lock()
	f.queries = append(f.queries, customerID+": "+query)
	fn := f.search
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(customerID, query)
}

func (f *fakeAds) Mutate(_ context.Context, customerID string, ops []googleads.Operation, validateOnly bool) (googleads.MutateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mutates = append(f.mutates, mutateCall{customerID: customerID, ops: ops, validateOnly: validateOnly})
	if f.mutateErr != nil {
		return googleads.MutateResult{}, f.mutateErr
	}
	return f.result, nil
}

func (f *fakeAds) ListAccessibleCustomers(context.Context) ([]string, error) {
	return f.accessible, nil
}

// rowsFor answers queries against view with rows, and everything else with
// nothing.
func rowsFor(view string, rows ...googleads.Row) func(string, string) ([]googleads.Row, error) {
	return func(_, query string) ([]googleads.Row, error) {
		if strings.Contains(query, "FROM "+view) {
			return rows, nil
		}
		return nil, nil
	}
}

func newEnv(ads *fakeAds) *Env {
	return &Env{
		Ads:             ads,
		Session:         NewSession("1234567890"),
		MCCID:           "9998887777",
		MaxBudgetChange: 1000,
	}
}

func row(t *testing.T, raw string) googleads.Row {
	t.Helper()
	var r googleads.Row
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func invoke(t *testing.T, tool interface {
	Invoke(context.Context, json.RawMessage) (protocol.CallResult, *protocol.ResponseError)
}, args string) (string, protocol.CallResult, *protocol.ResponseError) {
	t.Helper()
	res, rerr := tool.Invoke(context.Background(), json.RawMessage(args))
	var text string
	if len(res.Content) > 0 {
		text = res.Content[0].Text
	}
	return text, res, rerr
}
