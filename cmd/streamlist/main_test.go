package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
)

const people = `[
  {"name": "ada", "age": 36, "city": "london"},
  {"name": "alan", "age": 41, "city": "london"},
  {"name": "grace", "age": 85, "city": "new york"},
  {"name": "linus", "age": 12, "city": "helsinki"}
]`

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// runCLI isolates the command from config files in the working directory.
func runCLI(t *testing.T, stdin string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	dir := t.TempDir()
	args = append([]string{
		"--config", filepath.Join(dir, "none.yml"),
		"--env-file", filepath.Join(dir, "none.env"),
		"--log-level", "disabled",
	}, args...)

	var out, errOut bytes.Buffer
	code = run(context.Background(), args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_ListFromFile(t *testing.T) {
	path := writeInput(t, "people.json", people)

	code, stdout, stderr := runCLI(t, "", "-w", "age>=18", "-s", "name", path)
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	var got []map[string]any
	if err := gojson.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output %q is not JSON: %v", stdout, err)
	}
	if len(got) != 3 || got[0]["name"] != "ada" || got[2]["name"] != "grace" {
		t.Errorf("got %v", got)
	}
	if _, ok := got[0]["age"]; ok {
		t.Error("expected select to drop unselected fields")
	}
}

func TestRun_DistinctCountFromStdin(t *testing.T) {
	code, stdout, stderr := runCLI(t, people, "--distinct", "city", "--mode", "count")
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if strings.TrimSpace(stdout) != "3" {
		t.Errorf("count = %q, want 3", stdout)
	}
}

func TestRun_FirstMatch(t *testing.T) {
	code, stdout, _ := runCLI(t, people, "-m", "first", "--match", "city=london", "-s", "name")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	var got map[string]any
	if err := gojson.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("output %q is not JSON: %v", stdout, err)
	}
	if got["name"] != "ada" {
		t.Errorf("got %v, want ada", got)
	}
}

func TestRun_FirstNoMatchPrintsNull(t *testing.T) {
	code, stdout, _ := runCLI(t, people, "-m", "first", "--match", "city=paris")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if strings.TrimSpace(stdout) != "null" {
		t.Errorf("got %q, want null", stdout)
	}
}

func TestRun_AnyJSONLines(t *testing.T) {
	path := writeInput(t, "events.jsonl", "{\"type\":\"view\"}\n{\"type\":\"click\"}\n")

	code, stdout, _ := runCLI(t, "", "-m", "any", "--match", "type=click", path)
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if strings.TrimSpace(stdout) != "true" {
		t.Errorf("got %q, want true", stdout)
	}
}

func TestRun_CSVRoundTrip(t *testing.T) {
	path := writeInput(t, "people.csv", "name,city\nada,london\nlinus,helsinki\n")

	code, stdout, stderr := runCLI(t, "", "-o", "csv", "-w", "city~lon", path)
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, stderr)
	}
	if want := "city,name\nlondon,ada\n"; stdout != want {
		t.Errorf("got %q, want %q", stdout, want)
	}
}

func TestRun_Limit(t *testing.T) {
	code, stdout, _ := runCLI(t, people, "--limit", "2", "-s", "name", "-o", "jsonl")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if lines := strings.Split(strings.TrimSpace(stdout), "\n"); len(lines) != 2 {
		t.Errorf("got %d lines, want 2: %q", len(lines), stdout)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name     string
		stdin    string
		args     []string
		wantCode int
		wantErr  string
	}{
		{"unknown flag", "", []string{"--bogus"}, 2, "unknown flag"},
		{"too many files", "", []string{"a.json", "b.json"}, 2, "at most one input file"},
		{"bad condition", people, []string{"-w", "age"}, 2, "INVALID_FORMAT"},
		{"bad mode", people, []string{"-m", "sum"}, 2, "mode"},
		{"match with list", people, []string{"--match", "age>1"}, 2, "match"},
		{"bad input format", people, []string{"-i", "xml"}, 2, "input.format"},
		{"malformed json", "[{", nil, 2, "INVALID_FORMAT"},
		{"missing file", "", []string{"/nonexistent/people.json"}, 2, "cannot open input"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tc.stdin, tc.args...)
			if code != tc.wantCode {
				t.Errorf("exit code %d, want %d (stderr %q)", code, tc.wantCode, stderr)
			}
			if !strings.Contains(stderr, tc.wantErr) {
				t.Errorf("stderr %q does not contain %q", stderr, tc.wantErr)
			}
		})
	}
}

func TestRun_JSONErrorResponse(t *testing.T) {
	code, _, stderr := runCLI(t, people, "--log-format", "json", "-w", "=1")
	if code != 2 {
		t.Fatalf("exit code %d, want 2", code)
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := gojson.Unmarshal([]byte(strings.TrimSpace(stderr)), &resp); err != nil {
		t.Fatalf("stderr %q is not JSON: %v", stderr, err)
	}
	if resp.Error.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", resp.Error.Code)
	}
}

func TestRun_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yml")
	if err := os.WriteFile(cfgPath, []byte("output:\n  format: yaml\ninput:\n  format: csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STREAMLIST_OUTPUT_FORMAT", "jsonl")

	var out, errOut bytes.Buffer
	code := run(context.Background(),
		[]string{"--config", cfgPath, "--env-file", filepath.Join(dir, "none.env"), "--log-level", "disabled"},
		strings.NewReader("name\nada\n"), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, errOut.String())
	}
	if got := strings.TrimSpace(out.String()); got != `{"name":"ada"}` {
		t.Errorf("got %q, want the env format (jsonl) to win over the file", got)
	}
}

func TestRun_ComponentLogsCarryService(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run(context.Background(),
		[]string{
			"--config", filepath.Join(dir, "none.yml"),
			"--env-file", filepath.Join(dir, "none.env"),
			"--log-level", "debug", "--log-format", "json",
			"-m", "count",
		},
		strings.NewReader(people), &out, &errOut)
	if code != 0 {
		t.Fatalf("exit code %d, stderr %q", code, errOut.String())
	}

	components := map[string]bool{}
	for _, line := range strings.Split(strings.TrimSpace(errOut.String()), "\n") {
		var entry map[string]any
		if err := gojson.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if c, ok := entry["component"].(string); ok && entry["service"] == "streamlist" {
			components[c] = true
		}
	}
	if !components["query"] || !components["pipeline"] {
		t.Errorf("expected service-tagged query and pipeline logs, got %q", errOut.String())
	}
}

func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "", "--version")
	if code != 0 || !strings.HasPrefix(stdout, "streamlist ") {
		t.Errorf("code %d, stdout %q", code, stdout)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Telemetry.SampleRate = 2
	cfg.ApplyDefaults()
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "telemetry.sample_rate") {
		t.Errorf("expected sample rate error, got %v", err)
	}

	cfg = defaultConfig()
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid, got %v", err)
	}
}
