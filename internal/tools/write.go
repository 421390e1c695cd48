package tools

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/adsops/google-ads-mcp-server/internal/googleads"
	"github.com/adsops/google-ads-mcp-server/internal/mutate"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

// Mutation modes recorded in metrics.
const (
	modeDryRun   = "dry_run"
	modeApplied  = "applied"
	modeRejected = "rejected"
)

// write is one guarded mutation.
type write struct {
	// entity labels the write in metrics and logs.
	entity string
	// action completes "Error <action>: ..." messages.
	action string
	// title and name head the preview ("Campaign: Spring Sale").
	title   string
	name    string
	changes []mutate.Change
	// details is appended to a dry-run preview.
	details string
	ops     []googleads.Operation
}

// written is the outcome of a committed write.
type written struct {
	result   googleads.MutateResult
	warnings []string
}

// resourceName returns the i-th resource name, or "".
func (w written) resourceName(i int) string {
	if i < len(w.result.ResourceNames) {
		return w.result.ResourceNames[i]
	}
	return ""
}

// apply checks the budget cap, then either previews or commits w. A non-nil
// CallResult ends the call: it is the dry-run preview or the error text.
func (e *Env) apply(ctx context.Context, customerID string, guard mutate.Guard, w write) (written, *protocol.CallResult) {
	fields := logrus.Fields{"customer_id": customerID, "entity": w.entity, "operations": len(w.ops)}

	preview, err := guard.Preview(w.title, w.name, w.changes)
	if err != nil {
		e.Metrics.CountMutation(w.entity, modeRejected)
		e.log().WithFields(fields).WithError(err).Warn("write rejected")
		res := rejected(w.action, err)
		return written{}, &res
	}

	if guard.DryRun {
		e.Metrics.CountMutation(w.entity, modeDryRun)
		text := preview.Render()
		if w.details != "" {
			text += "\n\n" + w.details
		}
		text += "\n\n" + e.validate(ctx, customerID, w.ops)
		e.log().WithFields(fields).Info("dry run")
		res := protocol.Text(text)
		return written{}, &res
	}

	result, err := e.Ads.Mutate(ctx, customerID, w.ops, false)
	if err != nil {
		res, _ := e.failure(w.action, err)
		return written{}, &res
	}
	e.Metrics.CountMutation(w.entity, modeApplied)
	e.log().WithFields(fields).WithField("resources", result.ResourceNames).Info("write applied")
	return written{result: result, warnings: preview.Warnings}, nil
}

// validate asks the API to check ops without applying them.
func (e *Env) validate(ctx context.Context, customerID string, ops []googleads.Operation) string {
	if len(ops) == 0 {
		return "ℹ️  Nothing to validate."
	}
	if _, err := e.Ads.Mutate(ctx, customerID, ops, true); err != nil {
		msg := "⚠️  Google Ads validation failed: " + err.Error()
		if hint := googleads.Hint(err); hint != "" {
			msg += "\n\n💡 " + hint
		}
		return msg
	}
	return "✅ Google Ads validation passed (validate-only request)."
}

func rejected(action string, err error) protocol.CallResult {
	var capErr *mutate.BudgetCapError
	if errors.As(err, &capErr) {
		return protocol.ErrorText(fmt.Sprintf("Error %s: %s", action, capErr.Error()))
	}
	return protocol.ErrorText(fmt.Sprintf("Error %s: %v", action, err))
}

// withWarnings appends preview warnings to a success message.
func withWarnings(text string, warnings []string) string {
	if len(warnings) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(text, "\n"))
	b.WriteString("\n\n⚠️  Warnings:\n")
	for _, w := range warnings {
		b.WriteString("- " + w + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// lines joins non-empty lines.
func lines(parts ...string) string {
	return strings.Join(nonEmpty(parts...), "\n")
}

// writeArgs are the flags every write tool accepts.
type writeArgs struct {
	CustomerID      string  `json:"customer_id"`
	DryRun          bool    `json:"dry_run"`
	MaxBudgetChange float64 `json:"max_budget_change"`
}

// begin resolves the account and guard for a write.
func (e *Env) begin(a writeArgs) (string, mutate.Guard, *protocol.CallResult, *protocol.ResponseError) {
	cid, guidance, rerr := e.customer(a.CustomerID)
	if guidance != nil || rerr != nil {
		return "", mutate.Guard{}, guidance, rerr
	}
	return cid, e.guard(a.DryRun, a.MaxBudgetChange), nil, nil
}

func writeSchema(props map[string]protocol.JSONSchema, required ...string) *protocol.JSONSchema {
	if props == nil {
		props = map[string]protocol.JSONSchema{}
	}
	props["dry_run"] = dryRunSchema
	return objectSchema(props, required...)
}

// parseStatus validates an optional status enum against allowed values.
func parseStatus(raw, fallback string, allowed ...string) (string, *protocol.ResponseError) {
	v := strings.ToUpper(strings.TrimSpace(raw))
	if v == "" {
		return fallback, nil
	}
	if slices.Contains(allowed, v) {
		return v, nil
	}
	return "", invalidArgs(fmt.Sprintf("invalid status %q (use one of %s)", raw, strings.Join(allowed, ", ")))
}

const (
	statusEnabled = "ENABLED"
	statusPaused  = "PAUSED"
	statusRemoved = "REMOVED"
)

// firstRow runs a lookup query and returns its first row, or nil.
func (e *Env) firstRow(ctx context.Context, customerID, query string) (googleads.Row, error) {
	rows, err := e.search(ctx, customerID, query)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}
