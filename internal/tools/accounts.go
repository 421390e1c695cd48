package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adsops/google-ads-mcp-server/internal/gaql"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

type listAccountsTool struct{ env *Env }

// ListAccounts constructs the list_accounts tool.
func ListAccounts(env *Env) *listAccountsTool { return &listAccountsTool{env: env} }

func (t *listAccountsTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name: "list_accounts",
		Description: `List all accessible Google Ads accounts.

Returns the directly accessible accounts (usually manager/MCC accounts) and, for each, its direct client accounts. Client accounts are the ones operations can run on; pick one and call set_active_account.`,
		InputSchema: &protocol.JSONSchema{Type: "object", Properties: map[string]protocol.JSONSchema{}},
	}
}

type account struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Manager    string `json:"manager,omitempty"`
	Level      int64  `json:"level"`
}

const (
	accountMCC        = "MCC"
	accountSubManager = "Sub-Manager"
	accountClient     = "Client"
)

func (t *listAccountsTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	ids, err := t.env.Ads.ListAccessibleCustomers(ctx)
	if err != nil {
		return t.env.failure("listing accounts", err)
	}

	perRoot := make([][]account, len(ids))
	var g errgroup.Group
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			perRoot[i] = t.hierarchy(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	var all []account
	seen := map[string]bool{}
	for _, accs := range perRoot {
		for _, a := range accs {
			if seen[a.CustomerID] {
				continue
			}
			seen[a.CustomerID] = true
			all = append(all, a)
		}
	}
	if len(all) == 0 {
		return textResult("No Google Ads accounts found.")
	}

	var b strings.Builder
	b.WriteString("📊 Available Google Ads Accounts:\n\n")
	writeAccounts(&b, "Manager Accounts (MCC):", all, accountMCC)
	writeAccounts(&b, "Sub-Manager Accounts:", all, accountSubManager)
	clients := writeAccounts(&b, "Client Accounts (can run operations on these):", all, accountClient)
	if len(clients) > 0 {
		fmt.Fprintf(&b, "💡 Tip: Use set_active_account with customer_id %q to start working with this account.", clients[0].CustomerID)
	}

	enc, err := json.MarshalIndent(all, "", "  ")
	if err == nil {
		b.WriteString("\n\n" + string(enc))
	}
	return textResult(b.String())
}

// hierarchy returns root itself followed by its direct clients. A root whose
// hierarchy cannot be read is still listed.
func (t *listAccountsTool) hierarchy(ctx context.Context, root string) []account {
	query := gaql.Select(
		"customer_client.client_customer",
		"customer_client.descriptive_name",
		"customer_client.manager",
		"customer_client.id",
		"customer_client.level",
	).From("customer_client").Where("customer_client.level <= 1").String()

	self := account{CustomerID: root, Name: "Manager Account (MCC)", Type: accountMCC}
	rows, err := t.env.search(ctx, root, query)
	if err != nil {
		t.env.log().WithError(err).WithField("customer_id", root).Warn("fetching client accounts")
		return []account{self}
	}

	var clients []account
	for _, r := range rows {
		id := r.String("customer_client.id")
		name := r.String("customer_client.descriptive_name")
		manager := r.Bool("customer_client.manager")
		if id == root {
			if name != "" {
				self.Name = name
			}
			if !manager {
				self.Type = accountClient
			}
			continue
		}
		a := account{CustomerID: id, Name: name, Type: accountClient, Manager: root, Level: r.Int("customer_client.level")}
		if a.Name == "" {
			a.Name = "Client Account " + id
		}
		if manager {
			a.Type = accountSubManager
		}
		clients = append(clients, a)
	}
	return append([]account{self}, clients...)
}

func writeAccounts(b *strings.Builder, title string, all []account, kind string) []account {
	var picked []account
	for _, a := range all {
		if a.Type == kind {
			picked = append(picked, a)
		}
	}
	if len(picked) == 0 {
		return nil
	}
	b.WriteString(title + "\n")
	for _, a := range picked {
		fmt.Fprintf(b, "  • %s - %s\n", a.CustomerID, a.Name)
	}
	b.WriteString("\n")
	return picked
}

type setActiveAccountTool struct{ env *Env }

// SetActiveAccount constructs the set_active_account tool.
func SetActiveAccount(env *Env) *setActiveAccountTool { return &setActiveAccountTool{env: env} }

func (t *setActiveAccountTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "set_active_account",
		Description: "Set the active Google Ads account for subsequent operations. Hyphens are optional (123-456-7890 or 1234567890). Manager (MCC) accounts are rejected.",
		InputSchema: &protocol.JSONSchema{
			Type: "object",
			Properties: map[string]protocol.JSONSchema{
				"customer_id": {Type: "string", Description: "The Google Ads customer ID (format: 123-456-7890 or 1234567890)"},
			},
			Required: []string{"customer_id"},
		},
	}
}

func (t *setActiveAccountTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		CustomerID ID `json:"customer_id"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	if args.CustomerID == "" {
		return protocol.CallResult{}, invalidArgs("customer_id is required")
	}
	id, err := gaql.CustomerID(string(args.CustomerID))
	if err != nil {
		return protocol.CallResult{}, invalidArgs(fmt.Sprintf("invalid customer_id %q", args.CustomerID))
	}
	if t.env.MCCID != "" && id == t.env.MCCID {
		return textResult(fmt.Sprintf("Cannot use MCC account (%s) for operations.\n\n"+
			"Please run 'list_accounts' to see available client accounts, then use 'set_active_account' with a client account ID.", id))
	}

	t.env.Session.SetActive(id)
	t.env.log().WithField("customer_id", id).Info("active account set")
	return textResult("✅ Active account set to: " + id)
}

type accountStatusTool struct{ env *Env }

// AccountStatus constructs the get_account_status tool.
func AccountStatus(env *Env) *accountStatusTool { return &accountStatusTool{env: env} }

func (t *accountStatusTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name:        "get_account_status",
		Description: "Check which Google Ads account is currently active",
		InputSchema: &protocol.JSONSchema{Type: "object", Properties: map[string]protocol.JSONSchema{}},
	}
}

func (t *accountStatusTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	active := t.env.Session.Active()
	if active == "" {
		return textResult("❌ No active account set.\n\nPlease use:\n" +
			"1. list_accounts - to see available accounts\n" +
			"2. set_active_account - to choose a client account from the list")
	}
	return textResult(fmt.Sprintf("✅ Active account: %s\n\nAll operations will use this account unless you specify a different customer_id.", active))
}
