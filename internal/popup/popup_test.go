package popup

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hyperifyio/termsense/internal/page"
	"github.com/hyperifyio/termsense/internal/store"
	"github.com/hyperifyio/termsense/internal/ui"
	"github.com/hyperifyio/termsense/internal/workflow"
)

type tabURL string

func (t tabURL) URL() string { return string(t) }
func (t tabURL) Evaluate(context.Context, page.Script, any) (any, error) {
	return nil, nil
}

type fakeRunner struct {
	res        workflow.Result
	runs       int
	reanalyses int
	agrees     int
	agreeErr   error
}

func (f *fakeRunner) Run(context.Context, page.Tab) (workflow.Result, error) {
	f.runs++
	return f.res, f.res.Err
}

func (f *fakeRunner) Reanalyze(context.Context, page.Tab) (workflow.Result, error) {
	f.reanalyses++
	return f.res, f.res.Err
}

func (f *fakeRunner) Agree(context.Context, page.Tab) error {
	f.agrees++
	return f.agreeErr
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key(k))
	return next.(Model), cmd
}

func recordResult() workflow.Result {
	rec := store.AnalysisRecord{URL: "https://example.com/terms", Raw: "Data Collection: 5/5\nfoo"}
	return workflow.Result{
		Record: &rec,
		View:   ui.Derive(ui.Inputs{HasRecord: true, Summary: "markup", AgreementDetected: true}),
	}
}

// initResult runs the commands returned by Init and returns the workflow result.
func initResult(t *testing.T, m Model) resultMsg {
	t.Helper()
	cmd := m.Init()
	if cmd == nil {
		t.Fatalf("Init must start the workflow")
	}
	cmds := []tea.Cmd{cmd}
	for len(cmds) > 0 {
		c := cmds[0]
		cmds = cmds[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			cmds = append(cmds, msg...)
		case resultMsg:
			return msg
		}
	}
	t.Fatalf("Init produced no workflow result")
	return resultMsg{}
}

func TestPopup_OpenShowsStoredAnalysis(t *testing.T) {
	res := recordResult()
	res.Cached = true
	res.View = ui.Derive(ui.Inputs{HasRecord: true, Summary: "markup"})
	r := &fakeRunner{res: res}
	m := New(context.Background(), r, tabURL("https://example.com/terms"))
	if !m.State().InFlight || !strings.Contains(m.View(), ui.AnalyzingText) {
		t.Fatalf("popup should open in flight: %+v", m.State())
	}

	msg := initResult(t, m)
	if r.runs != 1 || r.reanalyses != 0 {
		t.Fatalf("runs=%d reanalyses=%d", r.runs, r.reanalyses)
	}
	next, _ := m.Update(msg)
	m = next.(Model)
	st := m.State()
	if st.InFlight || !st.ShowReanalyze || st.ShowStart || st.Summary != "markup" {
		t.Fatalf("state = %+v", st)
	}
	v := m.View()
	if !strings.Contains(v, "Data Collection: ") || !strings.Contains(v, "foo") {
		t.Fatalf("view should render the stored completion: %q", v)
	}
}

func TestPopup_OpenShowsPlaceholderForOtherPages(t *testing.T) {
	r := &fakeRunner{res: workflow.Result{
		View: ui.Derive(ui.Inputs{Irrelevant: true, Summary: "| Category | Score |"}),
	}}
	m := New(context.Background(), r, tabURL("https://example.com/"))
	next, _ := m.Update(initResult(t, m))
	m = next.(Model)
	if m.State().InFlight || !strings.Contains(m.View(), "| Category | Score |") {
		t.Fatalf("view = %q", m.View())
	}
}

func TestPopup_StartAfterErrorRunsAgain(t *testing.T) {
	r := &fakeRunner{res: workflow.Result{Err: errors.New("boom"), View: ui.Derive(ui.Inputs{ErrMessage: "boom"})}}
	m := New(context.Background(), r, tabURL("https://example.com/terms"))
	next, _ := m.Update(initResult(t, m))
	m = next.(Model)
	if !m.State().ShowStart {
		t.Fatalf("start should be offered after an error: %+v", m.State())
	}

	r.res = recordResult()
	m, cmd := press(t, m, "s")
	if cmd == nil || !m.State().InFlight {
		t.Fatalf("start should enter in-flight state")
	}
	next, _ = m.Update(m.runCmd(false)())
	m = next.(Model)
	if r.runs != 2 {
		t.Fatalf("runs = %d", r.runs)
	}
	st := m.State()
	if st.InFlight || !st.ShowReanalyze || !st.ShowAgree {
		t.Fatalf("state = %+v", st)
	}
}

func TestPopup_KeysIgnoredWhileInFlight(t *testing.T) {
	r := &fakeRunner{}
	m := New(context.Background(), r, tabURL("https://example.com/terms"))
	for _, k := range []string{"s", "r", "a", "d"} {
		next, cmd := press(t, m, k)
		if cmd != nil || !next.State().InFlight {
			t.Fatalf("key %q must be ignored while in flight", k)
		}
	}
	if r.runs != 0 || r.reanalyses != 0 || r.agrees != 0 {
		t.Fatalf("runner called: %+v", r)
	}
}

func TestPopup_AgreeAndDecline(t *testing.T) {
	r := &fakeRunner{res: recordResult()}
	m := New(context.Background(), r, tabURL("https://example.com/terms"))
	next, _ := m.Update(resultMsg{res: r.res})
	m = next.(Model)

	m, cmd := press(t, m, "a")
	if cmd == nil {
		t.Fatalf("expected agree command")
	}
	next, _ = m.Update(cmd())
	m = next.(Model)
	if r.agrees != 1 || m.State().ShowAgree {
		t.Fatalf("agrees=%d state=%+v", r.agrees, m.State())
	}

	next, _ = m.Update(resultMsg{res: r.res})
	m = next.(Model)
	m, _ = press(t, m, "d")
	if m.State().ShowAgree || m.State().ShowDecline || !m.State().ShowReanalyze {
		t.Fatalf("decline should only hide agreement controls: %+v", m.State())
	}
}

func TestPopup_ErrorView(t *testing.T) {
	err := errors.New("boom")
	r := &fakeRunner{res: workflow.Result{Err: err, View: ui.Derive(ui.Inputs{ErrMessage: "boom"})}}
	m := New(context.Background(), r, tabURL("https://example.com/terms"))
	next, _ := m.Update(m.runCmd(false)())
	m = next.(Model)
	if !m.State().IsError || !strings.Contains(m.View(), "Error: boom") {
		t.Fatalf("view = %q", m.View())
	}
	if !m.State().ShowStart {
		t.Fatalf("start should be offered again after an error")
	}
}

func TestPopup_Copy(t *testing.T) {
	r := &fakeRunner{res: recordResult()}
	m := New(context.Background(), r, tabURL("https://example.com/terms"))
	var copied string
	m.copyFn = func(s string) error { copied = s; return nil }
	next, _ := m.Update(resultMsg{res: r.res})
	m = next.(Model)
	m, _ = press(t, m, "c")
	if !strings.Contains(copied, "foo") {
		t.Fatalf("copied = %q", copied)
	}
	if !strings.Contains(m.View(), "copied") {
		t.Fatalf("expected status line")
	}
}

func TestPopup_Quit(t *testing.T) {
	m := New(context.Background(), &fakeRunner{}, tabURL("https://example.com/"))
	_, cmd := press(t, m, "q")
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
