package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"pgpartition/internal/config"
	"pgpartition/internal/logging"
)

const (
	helperEnv    = "GO_WANT_MAIN_HELPER"
	sampleConfig = "../../configs/partitions/events.yaml"
)

// TestHelperProcess runs main() in a subprocess when GO_WANT_MAIN_HELPER=1.
// Arguments after "--" become os.Args[1:].
func TestHelperProcess(t *testing.T) {
	if os.Getenv(helperEnv) != "1" {
		return
	}
	args := os.Args
	sep := -1
	for i, a := range args {
		if a == "--" {
			sep = i
			break
		}
	}
	if sep >= 0 {
		os.Args = append([]string{args[0]}, args[sep+1:]...)
	} else {
		os.Args = []string{args[0]}
	}
	main()
	os.Exit(0)
}

func runMainSubprocess(t *testing.T, flags ...string) (stdout, stderr string, code int) {
	t.Helper()

	cmd := exec.Command(os.Args[0], "-test.run=TestHelperProcess", "--")
	cmd.Env = append(os.Environ(), helperEnv+"=1")
	cmd.Args = append(cmd.Args, flags...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	code = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		code = exitErr.ExitCode()
	} else if err != nil {
		t.Fatalf("run subprocess: %v", err)
	}
	return outBuf.String(), errBuf.String(), code
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errw bytes.Buffer
	code = run(context.Background(), args, &out, &errw, logging.New(&errw, false, false))
	return out.String(), errw.String(), code
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "pgpartition.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

const dryrunConfig = `
connection:
  kind: dryrun
  options: { quiet: true }
plan:
  - op: create_list_partitioned
    table: orders
    keys: [region]
    columns: [{ name: region, type: text }]
  - op: create_list_partition
    table: orders
    suffix: eu
    value: eu
`

func TestRun_Usage(t *testing.T) {
	t.Parallel()

	_, stderr, code := runCLI(t)
	if code != 2 || !strings.Contains(stderr, "usage: pgpartition") {
		t.Fatalf("no args: code=%d stderr=%q", code, stderr)
	}

	_, stderr, code = runCLI(t, "-config", sampleConfig, "drop")
	if code != 2 || !strings.Contains(stderr, `unknown command "drop"`) {
		t.Fatalf("unknown command: code=%d stderr=%q", code, stderr)
	}
}

func TestRun_Kinds(t *testing.T) {
	t.Parallel()

	stdout, _, code := runCLI(t, "kinds")
	if code != 0 {
		t.Fatalf("code = %d", code)
	}
	if stdout != "dryrun\npostgres\n" {
		t.Fatalf("kinds = %q", stdout)
	}
}

func TestRun_Validate(t *testing.T) {
	t.Parallel()

	_, stderr, code := runCLI(t, "-config", sampleConfig, "validate")
	if code != 0 {
		t.Fatalf("code = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stderr, "warning: connection.dsn") {
		t.Fatalf("expected dsn warning, got:\n%s", stderr)
	}
	if !strings.Contains(stderr, "configuration is valid") {
		t.Fatalf("missing success log:\n%s", stderr)
	}

	bad := writeConfig(t, `
plan:
  - op: create_range_partition
    table: events
    from: "2024-01-01"
    to: "2025-01-01"
`)
	_, stderr, code = runCLI(t, "-config", bad, "validate")
	if code != 1 {
		t.Fatalf("bad config: code = %d", code)
	}
	if !strings.Contains(stderr, "error: plan[0]: partition: create_range_partition requires partition suffix") {
		t.Fatalf("bad config stderr:\n%s", stderr)
	}
}

func TestRun_Plan(t *testing.T) {
	t.Parallel()

	stdout, stderr, code := runCLI(t, "-config", sampleConfig, "plan")
	if code != 0 {
		t.Fatalf("code = %d, stderr:\n%s", code, stderr)
	}

	for _, want := range []string{
		"-- 0001_create_range_partitioned_events\n",
		`create index "app_events_user_id_index" on "events" ("user_id");`,
		"alter sequence events_id_seq restart with 1000;",
		"-- 0002_create_range_partition_events\ncreate table events_2024 partition of events for values from ('2024-01-01') to ('2025-01-01');\n",
		"create table orders_eu partition of orders for values in ('eu');",
		"create table sessions_p1 partition of sessions for values with (modulus 2, remainder 1);",
	} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("plan output missing %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, `"level"`) {
		t.Fatalf("logs leaked into stdout:\n%s", stdout)
	}
}

func TestRun_ApplyAndCatalogOnDryrun(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, dryrunConfig)

	for _, args := range [][]string{
		{"apply"},
		{"apply", "-tx"},
		{"apply", "-atomic"},
		{"partitions", "-table", "orders"},
		{"partitioned"},
		{"partitioned", "-strategy", "LIST"},
	} {
		stdout, stderr, code := runCLI(t, append([]string{"-config", cfg}, args...)...)
		if code != 0 {
			t.Fatalf("%v: code = %d, stderr:\n%s", args, code, stderr)
		}
		if stdout != "" {
			t.Fatalf("%v: stdout = %q, want empty", args, stdout)
		}
	}
}

func TestRun_CommandUsageErrors(t *testing.T) {
	t.Parallel()

	cfg := writeConfig(t, dryrunConfig)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"partitions"}, "-table is required"},
		{[]string{"partitioned", "-strategy", "interval"}, "unknown strategy"},
		{[]string{"apply", "-nope"}, "apply:"},
	}
	for _, tt := range tests {
		_, stderr, code := runCLI(t, append([]string{"-config", cfg}, tt.args...)...)
		if code != 2 || !strings.Contains(stderr, tt.want) {
			t.Fatalf("%v: code=%d stderr=%q", tt.args, code, stderr)
		}
	}
}

func TestRun_MigrateNeedsDSN(t *testing.T) {
	t.Parallel()

	_, stderr, code := runCLI(t, "-config", writeConfig(t, dryrunConfig), "migrate")
	if code != 1 || !strings.Contains(stderr, "connection.dsn is required") {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
}

func TestMain_ExitCodes(t *testing.T) {
	stdout, _, code := runMainSubprocess(t, "kinds")
	if code != 0 || !strings.Contains(stdout, "postgres") {
		t.Fatalf("kinds: code=%d stdout=%q", code, stdout)
	}

	_, stderr, code := runMainSubprocess(t, "-config", filepath.Join(t.TempDir(), "missing.yaml"), "validate")
	if code != 1 {
		t.Fatalf("missing config: code=%d stderr=%q", code, stderr)
	}
	if !strings.Contains(stderr, "load config") {
		t.Fatalf("stderr = %q", stderr)
	}
}

func TestSetupMetrics_Disabled(t *testing.T) {
	t.Parallel()

	for _, m := range []config.Metrics{
		{},
		{Backend: "none"},
		{Backend: "pushgateway"},
		{Backend: "datadog"},
		{Backend: "graphite"},
	} {
		flush := setupMetrics(m, zerolog.Nop())
		if flush == nil {
			t.Fatalf("%q: flush is nil", m.Backend)
		}
		flush()
	}
}

func TestSetupMetrics_PushgatewayFlush(t *testing.T) {
	var puts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/metrics/job/pgpartition") {
			puts.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	flush := setupMetrics(config.Metrics{Backend: "pushgateway", PushgatewayURL: srv.URL}, zerolog.Nop())
	flush()
	if puts.Load() != 1 {
		t.Fatalf("pushgateway PUTs = %d, want 1", puts.Load())
	}
}
