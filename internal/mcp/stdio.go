package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/adsops/google-ads-mcp-server/internal/protocol"
)

const maxStdioLine = 16 << 20

// RunStdio serves newline-delimited JSON-RPC from in to out until EOF or ctx
// is cancelled. Nothing but responses may be written to out.
func RunStdio(ctx context.Context, server *Server, in io.Reader, out io.Writer) error {
	lines := make(chan []byte)
	readErr := make(chan error, 1)

	go func() {
		sc := bufio.NewScanner(in)
		sc.Buffer(make([]byte, 0, 64*1024), maxStdioLine)
		for sc.Scan() {
			line := append([]byte(nil), sc.Bytes()...)
			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		case line := <-lines:
			line = bytes.TrimSpace(line)
			if len(line) == 0 {
				continue
			}
			resp, ok := handleLine(ctx, server, line)
			if !ok {
				continue
			}
			if err := enc.Encode(resp); err != nil {
				return err
			}
		}
	}
}

func handleLine(ctx context.Context, server *Server, line []byte) (protocol.Response, bool) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var req protocol.Request
	if err := dec.Decode(&req); err != nil {
		return protocol.Response{JSONRPC: "2.0", ID: normalizeID(nil), Error: &protocol.ResponseError{Code: CodeParseError, Message: "invalid JSON"}}, true
	}

	resp, err := server.Handle(ctx, req)
	if err != nil {
		return WriteError(req.ID, CodeInternalError, "internal error", err), true
	}
	if IsNotification(req) {
		return protocol.Response{}, false
	}
	return resp, true
}
