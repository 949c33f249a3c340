package session

import (
	"context"
	"fmt"

	"github.com/kingrea/promote/internal/api"
	"github.com/kingrea/promote/internal/assessment"
	"github.com/kingrea/promote/internal/notify"
)

// Generating reports whether a generation call is outstanding.
func (s *Session) Generating() bool {
	return s.generating
}

// Generated returns the staged scenario set.
func (s *Session) Generated() assessment.GeneratedSet {
	return s.generated
}

// PanelOpen reports whether the generated-scenarios panel is visible.
func (s *Session) PanelOpen() bool {
	return s.panelOpen
}

// PanelCategory is the category the panel is scoped to.
func (s *Session) PanelCategory() assessment.Category {
	return s.panelCat
}

// ScopePanel rescopes the panel to cat without changing its visibility.
func (s *Session) ScopePanel(cat assessment.Category) {
	s.panelCat = cat
}

// ClosePanel hides the panel and clears its scope.
func (s *Session) ClosePanel() {
	s.panelOpen = false
	s.panelCat = ""
}

// BeginGenerate validates a generation request for cat.
func (s *Session) BeginGenerate(cat assessment.Category) (api.GenerateRequest, error) {
	if !s.Editable() {
		return api.GenerateRequest{}, ErrSubmitted
	}
	if !cat.Valid() {
		return api.GenerateRequest{}, fmt.Errorf("session: unknown category %q", cat)
	}
	if s.department == "" {
		s.sink.Notify("Error", "Please select a department first", notify.SeverityDestructive)
		return api.GenerateRequest{}, ErrNoDepartment
	}
	if s.generating {
		return api.GenerateRequest{}, ErrGenerating
	}
	s.generating = true
	return api.GenerateRequest{Department: s.department, Type: cat}, nil
}

// FinishGenerate merges a successful response into cat's slice only and
// opens the panel on it. Failures leave the staged set untouched.
func (s *Session) FinishGenerate(cat assessment.Category, resp api.GenerateResponse, callErr error) error {
	s.generating = false
	if callErr != nil {
		s.logger.Error("Error generating %s scenarios: %v", cat.Noun(), callErr)
		s.sink.Notify("Error",
			fmt.Sprintf("Failed to generate %s scenarios and questions. Please try again.", cat.Noun()),
			notify.SeverityDestructive)
		return callErr
	}
	scenarios := resp.For(cat)
	s.generated.Merge(cat, scenarios)
	s.panelOpen = true
	s.panelCat = cat
	s.logger.Info("Generated %d %s scenario(s) for %s", len(scenarios), cat.Noun(), s.department)
	s.sink.Notify("Success",
		fmt.Sprintf("Generated %s scenarios and questions successfully", cat.Noun()),
		notify.SeverityDefault)
	return nil
}

// Generate runs BeginGenerate, the remote call and FinishGenerate inline.
func (s *Session) Generate(ctx context.Context, cat assessment.Category) error {
	req, err := s.BeginGenerate(cat)
	if err != nil {
		return err
	}
	resp, err := s.remote.Generate(ctx, req)
	return s.FinishGenerate(cat, resp, err)
}
