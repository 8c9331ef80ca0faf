package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/telemetrylint/eventcheck/pkg/models"
)

func sampleReport() *models.Report {
	return &models.Report{
		Events: []models.EventFinding{
			{
				Name:       "BarError",
				SourcePath: "src/internal_events/bar.rs",
				Violations: []string{`must emit counter "component_errors_total"`},
			},
		},
		Duplicates: [][]string{{"TcpBytesReceived", "UdpBytesReceived"}},
		Scanned:    12,
		Total:      2,
	}
}

func TestDashboardModel_Init(t *testing.T) {
	m := newDashboardModel()

	if m.activePanel != panelFindings {
		t.Errorf("expected activePanel = %d, got %d", panelFindings, m.activePanel)
	}
	if !m.loading {
		t.Error("expected loading = true on init")
	}
	if cmd := m.Init(); cmd == nil {
		t.Error("expected Init to return a non-nil command")
	}
}

func TestDashboardModel_KeyQ(t *testing.T) {
	m := newDashboardModel()
	m.loading = false

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected tea.Quit command from q key")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestDashboardModel_TabCycles(t *testing.T) {
	m := newDashboardModel()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	dm := updated.(dashboardModel)
	if dm.activePanel != panelDuplicates {
		t.Errorf("expected panel %d after tab, got %d", panelDuplicates, dm.activePanel)
	}

	updated, _ = dm.Update(tea.KeyMsg{Type: tea.KeyTab})
	dm = updated.(dashboardModel)
	if dm.activePanel != panelSummary {
		t.Errorf("expected panel %d after second tab, got %d", panelSummary, dm.activePanel)
	}

	updated, _ = dm.Update(tea.KeyMsg{Type: tea.KeyTab})
	dm = updated.(dashboardModel)
	if dm.activePanel != panelFindings {
		t.Errorf("expected panel %d after wrap, got %d", panelFindings, dm.activePanel)
	}

	updated, _ = dm.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	dm = updated.(dashboardModel)
	if dm.activePanel != panelSummary {
		t.Errorf("expected panel %d after shift+tab from 0, got %d", panelSummary, dm.activePanel)
	}
}

func TestDashboardModel_KeyR(t *testing.T) {
	m := newDashboardModel()
	m.loading = false

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	dm := updated.(dashboardModel)
	if !dm.loading {
		t.Error("expected loading = true after pressing r")
	}
	if cmd == nil {
		t.Error("expected a command (loadReport) from r key")
	}
}

func TestDashboardModel_ReportLoaded(t *testing.T) {
	m := newDashboardModel()

	updated, cmd := m.Update(reportLoadedMsg{report: sampleReport()})
	if cmd != nil {
		t.Error("expected no command after reportLoadedMsg")
	}
	dm := updated.(dashboardModel)
	if dm.loading {
		t.Error("expected loading = false after report loaded")
	}
	if dm.report == nil || dm.report.Total != 2 {
		t.Errorf("unexpected report: %+v", dm.report)
	}
}

func TestDashboardModel_ReportLoadedError(t *testing.T) {
	m := newDashboardModel()

	updated, _ := m.Update(reportLoadedMsg{err: errors.New("scan failed")})
	dm := updated.(dashboardModel)
	if dm.loading {
		t.Error("expected loading = false after error")
	}
	if dm.err == nil || dm.err.Error() != "scan failed" {
		t.Errorf("unexpected error state: %v", dm.err)
	}
}

func TestDashboardModel_WindowResize(t *testing.T) {
	m := newDashboardModel()

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	dm := updated.(dashboardModel)
	if dm.width != 200 || dm.height != 50 {
		t.Errorf("unexpected size: %dx%d", dm.width, dm.height)
	}
}

func TestDashboardModel_ViewWithReport(t *testing.T) {
	m := newDashboardModel()
	m.width = 130
	m.height = 40
	m.loading = false
	m.report = sampleReport()

	view := m.View()
	for _, want := range []string{"Invalid events", "BarError", "Duplicate definitions", "Summary"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestDashboardModel_ViewVerticalLayout(t *testing.T) {
	m := newDashboardModel()
	m.width = 80
	m.height = 40
	m.loading = false
	m.report = &models.Report{Scanned: 3}

	view := m.View()
	if !strings.Contains(view, "All conventions satisfied.") {
		t.Error("expected a clean report to show the all-clear line")
	}
}

func TestDashboardCmd_NilScanner(t *testing.T) {
	origScanner := Scanner
	defer func() { Scanner = origScanner }()
	Scanner = nil

	err := dashboardCmd.RunE(dashboardCmd, nil)
	if err == nil {
		t.Fatal("expected error when Scanner is nil")
	}
	if !strings.Contains(err.Error(), "scanner not initialized") {
		t.Errorf("unexpected error: %v", err)
	}
}
