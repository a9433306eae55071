package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"wfm-planner/cli"
	"wfm-planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const historyCSV = `Tarih;Çağrı Sayısı;Temsilci;AHT;SL
06.01.2025;2000;24;300;85
13.01.2025;2000;25;300;86
20.01.2025;2000;26;300;88
27.01.2025;2000;27;300;90
`

type env struct {
	t   *testing.T
	dir string
	db  string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("WFM_CONFIG", filepath.Join(dir, "missing.yaml"))
	return &env{t: t, dir: dir, db: filepath.Join(dir, "wfm.db")}
}

func (e *env) run(args ...string) (string, string, error) {
	e.t.Helper()
	var stdout, stderr bytes.Buffer
	args = append([]string{"--db", e.db}, args...)
	err := cli.Run(context.Background(), args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func (e *env) importHistory() {
	e.t.Helper()
	path := filepath.Join(e.dir, "history.csv")
	require.NoError(e.t, os.WriteFile(path, []byte(historyCSV), 0644))
	out, _, err := e.run("import", path)
	require.NoError(e.t, err)
	require.Contains(e.t, out, "Imported 4 records, skipped 0")
}

func TestImportAndForecast(t *testing.T) {
	e := newEnv(t)
	e.importHistory()

	out, _, err := e.run("forecast", "--from", "2025-02-03", "--days", "1", "--format", "json")
	require.NoError(t, err)

	var f models.Forecast
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	require.Len(t, f.Rows, 1)
	assert.Equal(t, 2000.0, f.Rows[0].Prediction.Calls)
	assert.Equal(t, 25, f.Rows[0].Staffing.RequiredAgents)
	assert.Equal(t, 80.0, f.Summary.TargetServiceLevel)

	out, _, err = e.run("forecast", "--from", "2025-02-03", "--to", "2025-02-04", "--sl", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-02-03 Mon : calls=2000")
	assert.Contains(t, out, "2025-02-04 Tue : no data")
	assert.Contains(t, out, "Target service level: 90%")
}

func TestImport_SkippedRows(t *testing.T) {
	e := newEnv(t)
	path := filepath.Join(e.dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Calls\n2025-01-06,100\nlater,5\n"), 0644))

	out, stderr, err := e.run("import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 records, skipped 1")
	assert.Contains(t, stderr, "skipped:")
}

func TestCommandErrors(t *testing.T) {
	e := newEnv(t)

	tests := map[string][]string{
		"UnknownFormat":    {"forecast", "--format", "xml"},
		"BackwardsRange":   {"forecast", "--from", "2025-02-01", "--to", "2025-01-01"},
		"BadTarget":        {"analyze", "--sl", "0"},
		"NaNTarget":        {"forecast", "--sl", "NaN", "--days", "3"},
		"MissingFile":      {"import", filepath.Join(e.dir, "nope.csv")},
		"ImportNeedsFile":  {"import"},
		"BadHistoryDate":   {"history", "get", "yesterday"},
		"MissingRecord":    {"history", "get", "2025-01-06"},
		"EmptyPatch":       {"history", "set", "2025-01-06"},
		"DashboardBadFlag": {"dashboard", "--format", "yaml"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := e.run(args...)
			assert.Error(t, err)
		})
	}
}

func TestHistoryCommands(t *testing.T) {
	e := newEnv(t)

	out, _, err := e.run("history", "set", "2025-01-06", "--calls", "1200", "--talk-time", "100", "--sl", "91")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-06 Mon : calls=1200 agents=0 aht=300s talk=100h sl=91%")

	_, _, err = e.run("history", "set", "2025-01-06", "--agents", "20")
	require.NoError(t, err)

	out, _, err = e.run("history", "get", "2025-01-06", "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-06,1200,20,0,100,91")

	_, _, err = e.run("history", "set", "2025-01-07", "--calls", "5")
	require.NoError(t, err)

	out, _, err = e.run("history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2025-01-06")
	assert.Contains(t, out, "2025-01-07")

	out, _, err = e.run("history", "delete", "2025-01-07")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2025-01-07")

	out, _, err = e.run("history", "list", "--format", "json")
	require.NoError(t, err)
	var recs []models.HistoricalRecord
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Len(t, recs, 1)

	_, _, err = e.run("history", "clear")
	require.NoError(t, err)

	out, _, err = e.run("history", "list")
	require.NoError(t, err)
	assert.Equal(t, "No records\n", out)
}

func TestAnalyzeAndDashboard(t *testing.T) {
	e := newEnv(t)
	e.importHistory()

	out, _, err := e.run("analyze", "--format", "json")
	require.NoError(t, err)
	var report models.GapReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.RecordsUsed)

	out, _, err = e.run("dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Records: 4")
}

func TestPushURL(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.Method+" "+r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	e := newEnv(t)
	_, _, err := e.run("--push-url", gateway.URL, "dashboard")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, paths, "PUT /metrics/job/wfm_planner")
}

func TestServe_StopsOnCancel(t *testing.T) {
	e := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		var stdout, stderr bytes.Buffer
		done <- cli.Run(ctx, []string{"--db", e.db, "serve", "--addr", "127.0.0.1:0"}, &stdout, &stderr)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not shut down")
	}
}
