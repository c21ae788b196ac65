package integration_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func serverBinary(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/edgeline", "../../bin/edgeline"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	t.Skip("server binary not found; run 'go build -o bin/edgeline ./cmd/edgeline' first")
	return ""
}

func serverEnv() []string {
	return append(os.Environ(),
		"EDGELINE_TRANSPORT=stdio",
		"EDGELINE_DB_PATH=:memory:",
		"EDGELINE_EDGE_URL=http://127.0.0.1:1",
		"EDGELINE_EDGE_TIMEOUT_MS=200",
	)
}

// TestStdioProtocolCompliance drives the built server over stdio with the
// SDK client.
func TestStdioProtocolCompliance(t *testing.T) {
	binaryPath := serverBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "serve")
	cmd.Env = serverEnv()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	require.NoError(t, err, "failed to connect to server")
	defer session.Close()

	t.Run("ServerInfo", func(t *testing.T) {
		initResult := session.InitializeResult()
		require.NotNil(t, initResult)
		require.NotNil(t, initResult.ServerInfo)
		require.Equal(t, "edgeline", initResult.ServerInfo.Name)
		require.Equal(t, "0.1.0", initResult.ServerInfo.Version)
	})

	t.Run("ListTools", func(t *testing.T) {
		tools, err := session.ListTools(ctx, nil)
		require.NoError(t, err, "tools/list failed")

		toolNames := make(map[string]bool)
		for _, tool := range tools.Tools {
			toolNames[tool.Name] = true
		}
		for _, name := range []string{"ping", "list_edge_sessions", "setup_edge_session", "mark_drill", "generate_report"} {
			require.True(t, toolNames[name], "missing expected tool: %s", name)
		}
	})

	t.Run("CallPingTool", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "ping"})
		require.NoError(t, err, "tools/call ping failed")
		require.False(t, result.IsError, "ping returned error: %v", result)
		require.NotEmpty(t, result.Content)
		text, ok := result.Content[0].(*sdkmcp.TextContent)
		require.True(t, ok)
		require.Contains(t, text.Text, "pong")
	})

	t.Run("UnreachableDevice", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_edge_sessions"})
		require.NoError(t, err)
		require.True(t, result.IsError)
	})

	t.Run("RosterRoundTrip", func(t *testing.T) {
		result, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
			Name:      "add_player",
			Arguments: map[string]any{"name": "Kim", "tag": "T1"},
		})
		require.NoError(t, err)
		require.False(t, result.IsError, "add_player returned error: %v", result)

		result, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "list_roster"})
		require.NoError(t, err)
		require.False(t, result.IsError)
		require.Contains(t, result.Content[0].(*sdkmcp.TextContent).Text, "Kim")
	})
}

// TestStdioProtocol_StdoutHygiene checks that stdout carries only JSON-RPC
// messages while logs go to stderr.
func TestStdioProtocol_StdoutHygiene(t *testing.T) {
	binaryPath := serverBinary(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, binaryPath, "serve")
	cmd.Env = append(serverEnv(), "EDGELINE_LOG_LEVEL=debug")

	stdin, err := cmd.StdinPipe()
	require.NoError(t, err)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		t.Logf("stderr (logs): %s", stderr.String())
	})

	initReq := `{"jsonrpc":"2.0","method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}},"id":1}`
	_, err = io.WriteString(stdin, initReq+"\n")
	require.NoError(t, err)

	lines := make(chan string, 1)
	go func() {
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		if scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	var line string
	select {
	case l, ok := <-lines:
		require.True(t, ok, "server closed stdout without responding")
		line = l
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for initialize response")
	}
	_ = stdin.Close()

	var msg struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      int             `json:"id"`
		Result  json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &msg), "stdout line is not JSON: %q", line)
	require.Equal(t, "2.0", msg.JSONRPC)
	require.Equal(t, 1, msg.ID)
	require.NotEmpty(t, msg.Result)
}
