// Package tools implements the Google Ads MCP tool catalog: account session
// tools, read tools, analytics reports and guarded write tools.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/metrics"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

// Ads is the upstream surface the tools depend on. *googleads.Client
// satisfies it.
type Ads interface {
	Search(ctx context.Context, customerID, query string) ([]googleads.Row, error)
	Mutate(ctx context.Context, customerID string, ops []googleads.Operation, validateOnly bool) (googleads.MutateResult, error)
	ListAccessibleCustomers(ctx context.Context) ([]string, error)
}

// Session holds the active account shared by every tool.
type Session struct {
	mu     sync.RWMutex
	active string
}

// NewSession seeds the active account, typically from
// GOOGLE_ADS_DEFAULT_CUSTOMER_ID.
func NewSession(initial string) *Session {
	return &Session{active: strings.ReplaceAll(strings.TrimSpace(initial), "-", "")}
}

// Active returns the active customer id, or "".
func (s *Session) Active() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive replaces the active customer id.
func (s *Session) SetActive(id string) {
	s.mu.Lock()
	s.active = id
	s.mu.Unlock()
}

// Env is the shared dependency set handed to every tool constructor.
type Env struct {
	Ads     Ads
	Session *Session
	// MCCID is the manager account; it is never operable.
	MCCID string
	// DryRun forces dry-run on every write.
	DryRun          bool
	MaxBudgetChange float64
	Log             *logrus.Entry
	Metrics         *metrics.Metrics
}

func (e *Env) log() *logrus.Entry {
	if e.Log != nil {
		return e.Log
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func (e *Env) guard(dryRun bool, maxBudgetChange float64) mutate.Guard {
	if maxBudgetChange <= 0 {
		maxBudgetChange = e.MaxBudgetChange
	}
	return mutate.NewGuard(dryRun || e.DryRun, maxBudgetChange)
}

const (
	msgNoAccount = "Error: No customer ID provided and no active account set.\n\n" +
		"Please use:\n" +
		"1. list_accounts - to see available accounts\n" +
		"2. set_active_account - to choose a client account"
	msgMCCAccount = "Cannot use MCC account (%s) for operations. Please use a client account ID instead."
)

// customer resolves the account a call operates on. A non-nil result is a
// guidance message the tool returns as-is.
func (e *Env) customer(override string) (string, *protocol.CallResult, *protocol.ResponseError) {
	raw := strings.TrimSpace(override)
	if raw == "" {
		raw = e.Session.Active()
	}
	if raw == "" {
		res := protocol.Text(msgNoAccount)
		return "", &res, nil
	}
	id, err := gaql.CustomerID(raw)
	if err != nil {
		return "", nil, invalidArgs(fmt.Sprintf("invalid customer_id %q", raw))
	}
	if e.MCCID != "" && id == e.MCCID {
		res := protocol.Text(fmt.Sprintf(msgMCCAccount, id))
		return "", &res, nil
	}
	return id, nil, nil
}

// search runs a query and logs it with the resolved account.
func (e *Env) search(ctx context.Context, customerID, query string) ([]googleads.Row, error) {
	e.log().WithFields(logrus.Fields{"customer_id": customerID}).Debug(query)
	return e.Ads.Search(ctx, customerID, query)
}

func decodeArgs(raw json.RawMessage, v any) *protocol.ResponseError {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidArgs("invalid arguments")
	}
	return nil
}

func invalidArgs(msg string) *protocol.ResponseError {
	return &protocol.ResponseError{Code: -32602, Message: msg}
}

// failure turns an upstream error into a tool error result carrying the
// remediation hint, if any.
func (e *Env) failure(action string, err error) (protocol.CallResult, *protocol.ResponseError) {
	e.log().WithError(err).Warn(action)
	var b strings.Builder
	fmt.Fprintf(&b, "Error %s: %s", action, err.Error())
	if hint := googleads.Hint(err); hint != "" {
		b.WriteString("\n\n💡 " + hint)
	}
	return protocol.ErrorText(b.String()), nil
}

// notFound is the result for a lookup that matched nothing.
func notFound(what string) (protocol.CallResult, *protocol.ResponseError) {
	return protocol.ErrorText(what + " not found"), nil
}

func textResult(s string) (protocol.CallResult, *protocol.ResponseError) {
	return protocol.Text(s), nil
}

func jsonResult(v any) (protocol.CallResult, *protocol.ResponseError) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return protocol.CallResult{}, &protocol.ResponseError{Code: -32603, Message: "encode result: " + err.Error()}
	}
	return protocol.Text(string(b)), nil
}

// ID is an identifier argument accepted as a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("id must be a string or number")
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

func idStrings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// customerSchema is the optional account override shared by every tool.
var customerSchema = protocol.JSONSchema{Type: "string", Description: "Optional customer ID (uses active account if not provided)"}

var dryRunSchema = protocol.JSONSchema{Type: "boolean", Description: "Preview the change without applying it (default: false)"}

func objectSchema(props map[string]protocol.JSONSchema, required ...string) *protocol.JSONSchema {
	if props == nil {
		props = map[string]protocol.JSONSchema{}
	}
	if _, ok := props["customer_id"]; !ok {
		props["customer_id"] = customerSchema
	}
	return &protocol.JSONSchema{Type: "object", Properties: props, Required: required}
}
