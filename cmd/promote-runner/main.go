// cmd/promote-runner/main.go
//
// Headless submission: loads an assessment from a YAML file, optionally books
// its group-discussion meeting, and submits it with the project's config.
// With -generate it instead prints generated scenarios in the file's format.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/bridge"
	"github.com/kingrea/promote/internal/config"
	"github.com/kingrea/promote/internal/logbook"
	"github.com/kingrea/promote/internal/notify"
	"github.com/kingrea/promote/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type runner struct {
	stdout io.Writer
	stderr io.Writer
}

func (r runner) die(format string, args ...any) int {
	fmt.Fprintf(r.stderr, format+"\n", args...)
	return 1
}

func run(args []string, stdout, stderr io.Writer) int {
	r := runner{stdout: stdout, stderr: stderr}
	fs := flag.NewFlagSet("promote-runner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectDir := fs.String("project", "", "path to the project directory (defaults to cwd)")
	file := fs.String("file", "", "assessment YAML file to submit")
	department := fs.String("department", "", "override the department named in the file")
	generate := fs.String("generate", "", "print generated scenarios for a category (psy or cs) instead of submitting")
	dryRun := fs.Bool("dry-run", false, "print the submission payload instead of sending it")
	bridgeURL := fs.String("bridge", "", "confirmation bridge to report the job to (e.g. http://127.0.0.1:8765)")
	timeout := fs.Duration("timeout", 0, "overall deadline for remote calls (0 = none beyond services.timeout)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var generateCat assessment.Category
	if *generate != "" {
		cat, err := assessment.ParseCategory(*generate)
		if err != nil {
			return r.die("--generate: %v", err)
		}
		generateCat = cat
	} else if strings.TrimSpace(*file) == "" {
		return r.die("--file is required")
	}

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			return r.die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		return r.die("resolve project dir: %v", err)
	}
	if err := config.InitPromoteDir(absoluteProject); err != nil {
		return r.die("init .promote: %v", err)
	}
	cfg, err := config.NewConfig(absoluteProject)
	if err != nil {
		return r.die("load config: %v", err)
	}

	var assessmentFile session.File
	if strings.TrimSpace(*file) != "" {
		if assessmentFile, err = session.LoadFile(*file); err != nil {
			return r.die("load assessment: %v", err)
		}
	}
	if dep := strings.TrimSpace(*department); dep != "" {
		assessmentFile.Department = dep
	}

	client := api.New(cfg.AssessmentBaseURL(), cfg.SchedulerURL(),
		api.WithCompID(cfg.CompID()),
		api.WithSigningKey(cfg.SigningKey()),
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
	)
	var logger session.Logger
	if lb, err := logbook.New(cfg.JournalPath()); err == nil {
		logger = lb
	}
	sess := session.New(client, printSink{w: stderr},
		session.WithCompID(cfg.CompID()),
		session.WithLogger(logger),
	)

	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	if generateCat != "" {
		return r.generate(ctx, sess, assessmentFile.Department, generateCat)
	}

	if err := assessmentFile.Apply(sess); err != nil {
		return r.die("apply assessment: %v", err)
	}
	if n := sess.Roster().Invalid(); n > 0 {
		fmt.Fprintf(stderr, "Warning: %d candidate email(s) look malformed and will be sent as-is\n", n)
	}

	if *dryRun {
		if assessmentFile.HasMeeting() {
			fmt.Fprintln(stderr, "Dry run: meeting not booked; group_discussions shows the empty default")
		}
		out, err := json.MarshalIndent(sess.Payload(), "", "  ")
		if err != nil {
			return r.die("encode payload: %v", err)
		}
		fmt.Fprintln(stdout, string(out))
		return 0
	}

	if assessmentFile.HasMeeting() {
		if err := sess.ScheduleMeeting(ctx); err != nil {
			return r.die("schedule meeting: %v", err)
		}
		if latest, ok := sess.Scheduler().Latest(); ok {
			fmt.Fprintf(stdout, "Meeting booked for %s: %s\n", latest.When(), latest.JoinURL)
		}
	}

	if err := sess.Submit(ctx); err != nil {
		return r.die("submit: %v", err)
	}
	fmt.Fprintf(stdout, "Job ID: %s\n", sess.JobID())

	if *bridgeURL == "" {
		return 0
	}
	confirmation := bridge.Confirmation{
		JobID:       sess.JobID(),
		CompID:      sess.CompID(),
		Department:  sess.Department(),
		Candidates:  len(sess.Payload().CandidateEmails),
		Source:      "runner",
		SubmittedAt: time.Now().UTC(),
	}
	reporter := bridge.NewReporter(*bridgeURL, &http.Client{Timeout: cfg.Timeout()})
	if err := reporter.Report(ctx, confirmation); err != nil {
		// The job is already queued; a missing bridge only loses the link.
		fmt.Fprintf(stderr, "Warning: %v\n", err)
		return 0
	}
	fmt.Fprintln(stdout, bridge.ConfirmationURL(*bridgeURL, sess.JobID()))
	return 0
}

// generate prints the scenarios under the same key an assessment file uses,
// ready to paste into one.
func (r runner) generate(ctx context.Context, sess *session.Session, department string, cat assessment.Category) int {
	if err := sess.SetDepartment(department); err != nil {
		return r.die("generate: %v", err)
	}
	if err := sess.Generate(ctx, cat); err != nil {
		if errors.Is(err, session.ErrNoDepartment) {
			return r.die("generate: --department or a file with a department is required")
		}
		return r.die("generate: %v", err)
	}
	out, err := yaml.Marshal(map[string][]assessment.Scenario{
		session.FileKey(cat): sess.Generated().For(cat),
	})
	if err != nil {
		return r.die("encode scenarios: %v", err)
	}
	fmt.Fprint(r.stdout, string(out))
	return 0
}

// printSink mirrors session notices to stderr so stdout stays parseable.
type printSink struct {
	w io.Writer
}

func (p printSink) Notify(title, description string, _ notify.Severity) {
	fmt.Fprintf(p.w, "%s: %s\n", title, description)
}
