package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/bridge"
)

const assessmentYAML = `
department: Sales
psy_questions:
  - scenario: Conflict in the team
    questions:
      - question: What do you do first?
        points: 5
candidates: [x@y.com, bad]
`

const meetingYAML = `
meeting:
  title: Group round
  date: "2026-10-20"
  time: "09:30"
  duration: "60"
  invitees: [lead@company.com]
`

// stubServices answers the assessment and scheduler endpoints and keeps
// every submission it receives.
type stubServices struct {
	mu        sync.Mutex
	submitted []api.SubmitRequest
	scheduled int
}

func (s *stubServices) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/add_promote_questions", func(w http.ResponseWriter, r *http.Request) {
		var req api.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.submitted = append(s.submitted, req)
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"job_id":"J-1"}`))
	})
	mux.HandleFunc("/generate_assessment", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"psy_questions":[{"scenario_id":1,"scenario":"Generated conflict","questions":[{"question":"First step?","points":4}]}]}`))
	})
	mux.HandleFunc("/schedule", func(w http.ResponseWriter, _ *http.Request) {
		s.mu.Lock()
		s.scheduled++
		s.mu.Unlock()
		_, _ = w.Write([]byte(`{"meeting_data":{"id":88,"join_url":"https://zoom.example/j/88"}}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	t.Setenv("PROMOTE_API_BASE", ts.URL)
	t.Setenv("PROMOTE_SCHEDULER_URL", ts.URL+"/schedule")
	return ts
}

func writeAssessment(t *testing.T, body string) (projectDir, file string) {
	t.Helper()
	projectDir = t.TempDir()
	file = filepath.Join(projectDir, "assessment.yaml")
	if err := os.WriteFile(file, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return projectDir, file
}

func runCapture(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRunSubmitsWithDefaultConfig(t *testing.T) {
	services := &stubServices{}
	services.start(t)
	projectDir, file := writeAssessment(t, assessmentYAML+meetingYAML)

	code, stdout, stderr := runCapture("-project", projectDir, "-file", file)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	if !strings.Contains(stdout, "Job ID: J-1") {
		t.Fatalf("stdout missing job id:\n%s", stdout)
	}
	if !strings.Contains(stdout, "zoom.example/j/88") {
		t.Fatalf("stdout missing meeting link:\n%s", stdout)
	}
	if !strings.Contains(stderr, "1 candidate email(s) look malformed") {
		t.Fatalf("expected malformed candidate warning, got:\n%s", stderr)
	}

	services.mu.Lock()
	defer services.mu.Unlock()
	if services.scheduled != 1 || len(services.submitted) != 1 {
		t.Fatalf("scheduled=%d submitted=%d", services.scheduled, len(services.submitted))
	}
	req := services.submitted[0]
	if req.Department != "Sales" || len(req.PsyQuestions) != 1 {
		t.Fatalf("payload = %+v", req)
	}
	if got := strings.Join(req.CandidateEmails, ","); got != "x@y.com,bad" {
		t.Fatalf("candidates = %s", got)
	}
	if !strings.Contains(string(req.GroupDiscussions), "zoom.example/j/88") {
		t.Fatalf("group_discussions = %s", req.GroupDiscussions)
	}
}

func TestRunHonorsExplicitTimeout(t *testing.T) {
	services := &stubServices{}
	services.start(t)
	projectDir, file := writeAssessment(t, assessmentYAML)

	code, stdout, stderr := runCapture("-project", projectDir, "-file", file, "-timeout", "5s")
	if code != 0 || !strings.Contains(stdout, "Job ID: J-1") {
		t.Fatalf("exit = %d stdout=%q stderr=%q", code, stdout, stderr)
	}
}

func TestRunDryRunSendsNothing(t *testing.T) {
	services := &stubServices{}
	services.start(t)
	projectDir, file := writeAssessment(t, assessmentYAML+meetingYAML)

	code, stdout, _ := runCapture("-project", projectDir, "-file", file, "-dry-run", "-department", "Ops")
	if code != 0 {
		t.Fatalf("exit = %d", code)
	}
	var payload api.SubmitRequest
	if err := json.Unmarshal([]byte(stdout), &payload); err != nil {
		t.Fatalf("stdout is not a payload: %v\n%s", err, stdout)
	}
	if payload.Department != "Ops" || string(payload.GroupDiscussions) != "[]" {
		t.Fatalf("payload = %+v", payload)
	}
	services.mu.Lock()
	defer services.mu.Unlock()
	if services.scheduled != 0 || len(services.submitted) != 0 {
		t.Fatalf("dry run reached the services")
	}
}

func TestRunGeneratePrintsScenarios(t *testing.T) {
	services := &stubServices{}
	services.start(t)
	projectDir := t.TempDir()

	code, stdout, stderr := runCapture("-project", projectDir, "-generate", "psychometric", "-department", "Sales")
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	for _, want := range []string{"psy_questions:", "Generated conflict", "points: 4"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("stdout missing %q:\n%s", want, stdout)
		}
	}

	if code, _, stderr := runCapture("-project", projectDir, "-generate", "psy"); code != 1 || !strings.Contains(stderr, "department") {
		t.Fatalf("generate without department: exit=%d stderr=%q", code, stderr)
	}
}

func TestRunReportsToBridge(t *testing.T) {
	services := &stubServices{}
	services.start(t)
	registry := bridge.NewRegistry()
	srv := bridge.NewServer(bridge.Settings{Enabled: true, Addr: "127.0.0.1:0"}, bridge.WithRegistry(registry))
	bridgeTS := httptest.NewServer(srv.Handler())
	t.Cleanup(bridgeTS.Close)
	projectDir, file := writeAssessment(t, assessmentYAML)

	code, stdout, stderr := runCapture("-project", projectDir, "-file", file, "-bridge", bridgeTS.URL)
	if code != 0 {
		t.Fatalf("exit = %d, stderr:\n%s", code, stderr)
	}
	c, ok := registry.Lookup("J-1")
	if !ok || c.Source != "runner" || c.Candidates != 2 {
		t.Fatalf("registry entry = %+v, %v", c, ok)
	}
	if !strings.Contains(stdout, bridge.ConfirmationURL(bridgeTS.URL, "J-1")) {
		t.Fatalf("stdout missing confirmation url:\n%s", stdout)
	}
}

func TestRunRejectsBadArguments(t *testing.T) {
	projectDir := t.TempDir()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no file", args: []string{"-project", projectDir}, want: "--file is required"},
		{name: "unknown category", args: []string{"-project", projectDir, "-generate", "group"}, want: "unknown category"},
		{name: "missing file", args: []string{"-project", projectDir, "-file", filepath.Join(projectDir, "nope.yaml")}, want: "load assessment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCapture(tt.args...)
			if code != 1 || !strings.Contains(stderr, tt.want) {
				t.Fatalf("exit=%d stderr=%q, want %q", code, stderr, tt.want)
			}
		})
	}
}
