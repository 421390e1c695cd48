package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

// maxQueryRows caps what run_gaql_query returns.
const maxQueryRows = 1000

type gaqlQueryTool struct{ env *Env }

// GAQLQuery constructs the run_gaql_query tool.
func GAQLQuery(env *Env) *gaqlQueryTool { return &gaqlQueryTool{env: env} }

func (t *gaqlQueryTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{
		Name: "run_gaql_query",
		Description: `Run a raw Google Ads Query Language (GAQL) query and return the rows as JSON.

Example: SELECT campaign.id, campaign.name, metrics.clicks FROM campaign WHERE segments.date DURING LAST_7_DAYS
At most 1000 rows are returned.`,
		InputSchema: objectSchema(map[string]protocol.JSONSchema{
			"query": {Type: "string", Description: "The GAQL query to execute"},
		}, "query"),
	}
}

func (t *gaqlQueryTool) Invoke(ctx context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		CustomerID string `json:"customer_id"`
		Query      any    `json:"query"`
	}
	if err := decodeArgs(raw, &args); err != nil {
		return protocol.CallResult{}, err
	}
	query, ok := args.Query.(string)
	if !ok || strings.TrimSpace(query) == "" {
		return textResult("Error: Invalid query provided. Please provide a valid GAQL query string.")
	}
	cid, guidance, rerr := t.env.customer(args.CustomerID)
	if guidance != nil || rerr != nil {
		return derefResult(guidance), rerr
	}

	rows, err := t.env.search(ctx, cid, strings.TrimSpace(query))
	if err != nil {
		return t.env.failure("executing query", err)
	}
	if len(rows) == 0 {
		return textResult("No results found for the query.")
	}
	if len(rows) > maxQueryRows {
		return jsonResult(map[string]any{
			"warning": fmt.Sprintf("Query returned %d rows. Showing first %d.", len(rows), maxQueryRows),
			"results": rows[:maxQueryRows],
		})
	}
	return jsonResult(rows)
}
