package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/adsops/google-ads-mcp-server/internal/metrics"
	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

type echoTool struct {
	name string
}

func (e echoTool) Descriptor() protocol.ToolDescriptor {
	return protocol.ToolDescriptor{Name: e.name, Description: "echo", InputSchema: &protocol.JSONSchema{Type: "object"}}
}

func (e echoTool) Invoke(_ context.Context, raw json.RawMessage) (protocol.CallResult, *protocol.ResponseError) {
	var args struct {
		Text string `json:"text"`
		Fail bool   `json:"fail"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return protocol.CallResult{}, &protocol.ResponseError{Code: CodeInvalidParams, Message: "invalid arguments"}
	}
	if args.Fail {
		return protocol.ErrorText("boom"), nil
	}
	return protocol.Text(args.Text), nil
}

func newTestServer() *Server {
	return NewServer(NewToolbox(echoTool{"zeta"}, echoTool{"alpha"}, echoTool{"mid"}),
		WithInfo("ads-test", "1.2.3"), WithMetrics(metrics.NewMetrics("t")))
}

func TestInitialize(t *testing.T) {
	resp, _ := newTestServer().Handle(context.Background(), protocol.Request{JSONRPC: "2.0", ID: float64(1), Method: "initialize"})
	res, ok := resp.Result.(protocol.InitializeResult)
	if !ok {
		t.Fatalf("unexpected result %T", resp.Result)
	}
	if res.ServerInfo.Name != "ads-test" || res.ServerInfo.Version != "1.2.3" || res.ProtocolVersion != ProtocolVersion {
		t.Fatalf("unexpected initialize result: %+v", res)
	}
}

func TestToolsListKeepsRegistrationOrder(t *testing.T) {
	resp, _ := newTestServer().Handle(context.Background(), protocol.Request{ID: "a", Method: "tools/list"})
	list := resp.Result.(protocol.ListResult)
	var names []string
	for _, d := range list.Tools {
		names = append(names, d.Name)
	}
	if strings.Join(names, ",") != "zeta,alpha,mid" {
		t.Fatalf("order = %v", names)
	}
}

func TestToolsCall(t *testing.T) {
	s := newTestServer()
	ctx := context.Background()

	resp, _ := s.Handle(ctx, protocol.Request{ID: float64(2), Method: "tools/call", Params: json.RawMessage(`{"name":"alpha","arguments":{"text":"hi"}}`)})
	res := resp.Result.(protocol.CallResult)
	if res.IsError || res.Content[0].Text != "hi" {
		t.Fatalf("unexpected result: %+v", res)
	}

	resp, _ = s.Handle(ctx, protocol.Request{ID: float64(3), Method: "tools/call", Params: json.RawMessage(`{"name":"alpha","arguments":{"fail":true}}`)})
	if res := resp.Result.(protocol.CallResult); !res.IsError {
		t.Fatalf("expected tool error result")
	}

	resp, _ = s.Handle(ctx, protocol.Request{ID: float64(4), Method: "tools/call", Params: json.RawMessage(`{"name":"nope"}`)})
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected tool not found, got %+v", resp.Error)
	}

	resp, _ = s.Handle(ctx, protocol.Request{ID: float64(5), Method: "tools/call", Params: json.RawMessage(`{"name":"alpha","arguments":"bad"}`)})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Fatalf("expected invalid params, got %+v", resp.Error)
	}

	resp, _ = s.Handle(ctx, protocol.Request{ID: float64(6), Method: "tools/call", Params: json.RawMessage(`{}`)})
	if resp.Error == nil || resp.Error.Message != "tool name required" {
		t.Fatalf("expected name required, got %+v", resp.Error)
	}
}

func TestUnknownMethodAndVersion(t *testing.T) {
	s := newTestServer()
	resp, _ := s.Handle(context.Background(), protocol.Request{ID: float64(1), Method: "resources/list"})
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Fatalf("expected method not found")
	}
	resp, _ = s.Handle(context.Background(), protocol.Request{JSONRPC: "1.0", Method: "ping"})
	if resp.Error == nil || resp.Error.Code != CodeInvalidRequest || resp.ID != "0" {
		t.Fatalf("expected invalid request with id 0, got %+v", resp)
	}
}

func TestHTTPHandler(t *testing.T) {
	h := NewHTTPHandler(newTestServer(), AuthConfig{})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(body))
		req.RemoteAddr = "127.0.0.1:5000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := post(`{"jsonrpc":"2.0","id":7,"method":"ping"}`)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"id":7`) {
		t.Fatalf("ping: %d %s", rr.Code, rr.Body.String())
	}

	rr = post(`{not json`)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), "-32700") {
		t.Fatalf("parse error: %d %s", rr.Code, rr.Body.String())
	}

	rr = post(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if rr.Code != http.StatusAccepted || rr.Body.Len() != 0 {
		t.Fatalf("notification: %d %q", rr.Code, rr.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("health: %d %s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "127.0.0.1:5000"
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics: %d", rr.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, office, _ := net.ParseCIDR("10.1.0.0/16")
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name   string
		cfg    AuthConfig
		remote string
		bearer string
		want   int
	}{
		{"loopback without token", AuthConfig{}, "127.0.0.1:1", "", http.StatusOK},
		{"remote without token or allowlist", AuthConfig{}, "203.0.113.9:1", "", http.StatusForbidden},
		{"remote with token", AuthConfig{Token: "s3cret"}, "203.0.113.9:1", "s3cret", http.StatusOK},
		{"remote wrong token", AuthConfig{Token: "s3cret"}, "203.0.113.9:1", "nope", http.StatusUnauthorized},
		{"loopback missing token", AuthConfig{Token: "s3cret"}, "[::1]:1", "", http.StatusUnauthorized},
		{"allowlisted", AuthConfig{Allowlist: []*net.IPNet{office}}, "10.1.2.3:1", "", http.StatusOK},
		{"outside allowlist", AuthConfig{Token: "s3cret", Allowlist: []*net.IPNet{office}}, "10.2.0.1:1", "s3cret", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.bearer != "" {
				req.Header.Set("Authorization", "Bearer "+tc.bearer)
			}
			rr := httptest.NewRecorder()
			NewAuthMiddleware(tc.cfg)(ok).ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d (%s)", tc.want, rr.Code, rr.Body.String())
			}
			if tc.want != http.StatusOK {
				var env errorEnvelope
				if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil || env.Ok || env.Error == nil {
					t.Fatalf("expected error envelope, got %s", rr.Body.String())
				}
			}
		})
	}
}

func TestRunStdio(t *testing.T) {
	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize"}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		``,
		`garbage`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"mid","arguments":{"text":"yo"}}}`,
	}, "\n"))
	var out bytes.Buffer

	if err := RunStdio(context.Background(), newTestServer(), in, &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 responses, got %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], `"protocolVersion"`) || !strings.Contains(lines[0], `"id":1`) {
		t.Fatalf("initialize line: %s", lines[0])
	}
	if !strings.Contains(lines[1], "-32700") {
		t.Fatalf("parse error line: %s", lines[1])
	}
	if !strings.Contains(lines[2], `"text":"yo"`) || !strings.Contains(lines[2], `"id":2`) {
		t.Fatalf("call line: %s", lines[2])
	}
}

func TestRunStdioStopsOnCancel(t *testing.T) {
	pr, pw := net.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunStdio(ctx, newTestServer(), pr, &bytes.Buffer{}) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
}
