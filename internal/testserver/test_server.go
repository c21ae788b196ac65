// Package testserver runs the full HTTP stack against an in-memory database
// and a scripted Edge device.
package testserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/edgeline/internal/domain/activity"
	"github.com/rpggio/edgeline/internal/domain/journal"
	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/roster"
	"github.com/rpggio/edgeline/internal/domain/session"
	"github.com/rpggio/edgeline/internal/edge"
	"github.com/rpggio/edgeline/internal/mcp"
	"github.com/rpggio/edgeline/internal/sqlite"
	"github.com/rpggio/edgeline/internal/transport"
	"github.com/stretchr/testify/require"
)

// RecordingStart is the start of the scripted recording "s1".
const RecordingStart int64 = 1_700_000_040_000

type TestServer struct {
	Server *httptest.Server
	DB     *sqlite.DB
	Device *Device
	Token  string
	TeamID string
}

func New(t *testing.T, token, teamID string) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	device := NewDevice()
	deviceServer := httptest.NewServer(device.Handler())

	client := edge.NewClient(deviceServer.URL, "", 5*time.Second, nil)
	players := sqlite.NewPlayerRepository(db)
	workspaces := session.NewService(
		sqlite.NewWorkspaceRepository(db),
		sqlite.NewEventRepository(db),
		players,
		client,
		journal.NewService(sqlite.NewJournalRepository(db), nil),
		report.NewOrchestrator(client, report.Config{PollInterval: 5 * time.Millisecond}, nil),
		report.NewTracker(nil),
		nil,
	)

	keys := sqlite.NewAPIKeyRepository(db)
	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Workspaces: workspaces,
			Roster:     roster.NewService(players, nil),
		},
		Resolver:      keys,
		AuthEnabled:   true,
		TransportMode: "http",
	})
	server := httptest.NewServer(transport.NewRouter(transport.RouterConfig{
		MCP:  transport.NewMCPHandler(mcpServer, nil),
		Auth: transport.AuthMiddleware(keys),
	}))

	ts := &TestServer{
		Server: server,
		DB:     db,
		Device: device,
		Token:  token,
		TeamID: teamID,
	}
	require.NoError(t, keys.Add(context.Background(), teamID, token, "test"))

	t.Cleanup(func() {
		server.Close()
		deviceServer.Close()
		_ = db.Close()
	})

	return ts
}

// AddPlayer seeds the roster of the server's team.
func (ts *TestServer) AddPlayer(t *testing.T, id, name, tag string) {
	t.Helper()
	p := &roster.Player{ID: id, Name: name, Tag: tag}
	require.NoError(t, sqlite.NewPlayerRepository(ts.DB).Upsert(context.Background(), ts.TeamID, p))
}

// Connect opens an MCP client session authenticated with token.
func (ts *TestServer) Connect(t *testing.T, token string) *sdkmcp.ClientSession {
	t.Helper()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	cs, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: &http.Client{Transport: bearer{token: token}},
		MaxRetries: -1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

type bearer struct {
	token string
}

func (b bearer) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.token)
	return http.DefaultTransport.RoundTrip(req)
}

// Device imitates the Edge device API. Report jobs stay pending while held
// and complete on the next poll otherwise.
type Device struct {
	mu        sync.Mutex
	hold      bool
	jobs      int
	polls     []string
	cancelled []string
	requests  []report.Request
}

func NewDevice() *Device {
	return &Device{}
}

// Hold keeps report jobs pending until released.
func (d *Device) Hold(hold bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hold = hold
}

// Polls returns the game ids of every report call, in order.
func (d *Device) Polls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.polls...)
}

// Cancelled returns the game ids passed to /cancel.
func (d *Device) Cancelled() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.cancelled...)
}

// LastRequest returns the most recent report body.
func (d *Device) LastRequest() (report.Request, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.requests) == 0 {
		return report.Request{}, false
	}
	return d.requests[len(d.requests)-1], true
}

func (d *Device) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []session.Summary{{ID: "s1", Start: RecordingStart, Duration: 30 * 60_000}})
	})
	mux.HandleFunc("GET /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "s1" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, session.RawSession{
			ID:             "s1",
			StartTimestamp: RecordingStart,
			EndTimestamp:   RecordingStart + 30*60_000,
			Duration:       30 * 60_000,
			ActivityGraph:  []activity.Point{{Timestamp: 0, Value: 1}, {Timestamp: 60_000, Value: 3}},
			Players:        map[string]roster.TagSummary{"T1": {Load: 10}, "T9": {Load: 4}},
		})
	})
	mux.HandleFunc("POST /report", func(w http.ResponseWriter, r *http.Request) {
		var body report.Request
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gameID := r.URL.Query().Get("gameId")

		d.mu.Lock()
		d.polls = append(d.polls, gameID)
		d.requests = append(d.requests, body)
		if gameID == "" {
			d.jobs++
			gameID = fmt.Sprintf("g-%d", d.jobs)
			d.mu.Unlock()
			writeJSON(w, http.StatusNotFound, report.Response{GameID: gameID, Message: report.MessageReportNotFound})
			return
		}
		hold := d.hold
		d.mu.Unlock()

		if hold {
			writeJSON(w, http.StatusNotFound, report.Response{GameID: gameID, Message: report.MessageReportNotFound})
			return
		}
		writeJSON(w, http.StatusOK, report.Response{
			GameID:    gameID,
			Stats:     map[string]any{"T1": map[string]any{"distance": 1200.0}},
			Timestamp: RecordingStart,
		})
	})
	mux.HandleFunc("GET /cancel", func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		d.cancelled = append(d.cancelled, r.URL.Query().Get("gameId"))
		d.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
