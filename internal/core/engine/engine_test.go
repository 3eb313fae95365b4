package engine

import (
	"errors"
	"testing"
	"time"

	"courtside/internal/core/model"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 19, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type fakeGate struct {
	calls []bool
	err   error
}

func (g *fakeGate) SetEnabled(enabled bool) error {
	if g.err != nil {
		return g.err
	}
	g.calls = append(g.calls, enabled)
	return nil
}

func testDocument() model.Document {
	doc := model.Empty()
	doc.Components = []model.Component{
		{ID: "clock", Kind: model.KindTimer, Font: doc.Font, Timer: &model.TimerSpec{Rounding: model.RoundingStandard}},
		{ID: "home", Kind: model.KindNumber, Font: doc.Font, Number: &model.NumberSpec{Default: 3}},
		{ID: "logo", Kind: model.KindImage, Font: doc.Font, Image: &model.ImageSpec{Source: "/tmp/logo.png", Width: 64, Height: 64, Opacity: 1}},
		{ID: "arrow", Kind: model.KindImageToggle, Font: doc.Font, Toggle: &model.ImageToggleSpec{
			Sources: []string{"/tmp/left.png", "/tmp/right.png", "/tmp/none.png"},
			Width:   32, Height: 32, Opacity: 1,
		}},
		{ID: "title", Kind: model.KindLabel, Font: doc.Font, Label: &model.LabelSpec{Default: "Home vs Away", Editable: true}},
	}
	return doc
}

func newTestEngine(t *testing.T) (*Engine, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	eng := New(Options{Now: clock.Now})
	eng.ApplyDocument(testDocument())
	return eng, clock
}

func itemByID(t *testing.T, snapshot Snapshot, id string) Item {
	t.Helper()
	for _, item := range snapshot.Items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("snapshot has no item %q", id)
	return Item{}
}

func TestApplyDocument_Defaults(t *testing.T) {
	eng, _ := newTestEngine(t)
	snapshot := eng.Snapshot()

	if len(snapshot.Items) != 5 {
		t.Fatalf("snapshot has %d items, want 5", len(snapshot.Items))
	}
	if got := itemByID(t, snapshot, "home").Text; got != "3" {
		t.Errorf("number default = %q, want %q", got, "3")
	}
	if got := itemByID(t, snapshot, "clock").Text; got != "0:00" {
		t.Errorf("timer default = %q, want %q", got, "0:00")
	}
	if got := itemByID(t, snapshot, "title").Text; got != "Home vs Away" {
		t.Errorf("label default = %q, want %q", got, "Home vs Away")
	}
	logo := itemByID(t, snapshot, "logo")
	if logo.Source != "/tmp/logo.png" || logo.Width != 64 || logo.Height != 64 {
		t.Errorf("image item = %+v, want source/size from config", logo)
	}
	if got := itemByID(t, snapshot, "arrow").Source; got != "/tmp/left.png" {
		t.Errorf("toggle default source = %q, want first entry", got)
	}
}

func TestApplyDocument_TimerDefaultElapsed(t *testing.T) {
	clock := newFakeClock()
	eng := New(Options{Now: clock.Now})
	doc := model.Empty()
	doc.Components = []model.Component{{
		ID: "clock", Kind: model.KindTimer, Font: doc.Font,
		Timer: &model.TimerSpec{Default: 10 * time.Minute, Rounding: model.RoundingStandard},
	}}
	eng.ApplyDocument(doc)

	if got := itemByID(t, eng.Snapshot(), "clock").Text; got != "10:00" {
		t.Errorf("timer with default = %q, want %q", got, "10:00")
	}
}

func TestReconcile_PreservesStateAcrossStyleChanges(t *testing.T) {
	eng, clock := newTestEngine(t)

	eng.Apply(Action{Type: ActionNumberIncrease, ID: "home"})
	eng.Apply(Action{Type: ActionNumberIncrease, ID: "home"})
	eng.Apply(Action{Type: ActionTimerStart, ID: "clock"})
	clock.Advance(30 * time.Second)
	if err := eng.SetLabel("title", "Finals"); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}

	restyled := testDocument()
	for i := range restyled.Components {
		restyled.Components[i].Font.Size = 64
		restyled.Components[i].X = 100
	}
	eng.ApplyDocument(restyled)

	snapshot := eng.Snapshot()
	if got := itemByID(t, snapshot, "home").Text; got != "5" {
		t.Errorf("number after restyle = %q, want %q", got, "5")
	}
	if got := itemByID(t, snapshot, "title").Text; got != "Finals" {
		t.Errorf("label after restyle = %q, want %q", got, "Finals")
	}
	// The timer survived the reload still running.
	clock.Advance(30 * time.Second)
	if got := itemByID(t, eng.Snapshot(), "clock").Text; got != "1:00" {
		t.Errorf("timer after restyle = %q, want %q", got, "1:00")
	}
	if got := itemByID(t, snapshot, "home").FontSize; got != 64 {
		t.Errorf("restyled font size = %d, want 64", got)
	}
}

func TestReconcile_DropsRemovedAndDefaultsNew(t *testing.T) {
	eng, _ := newTestEngine(t)
	eng.Apply(Action{Type: ActionNumberIncrease, ID: "home"})

	next := model.Empty()
	next.Components = []model.Component{
		{ID: "away", Kind: model.KindNumber, Font: next.Font, Number: &model.NumberSpec{}},
	}
	eng.ApplyDocument(next)

	snapshot := eng.Snapshot()
	if len(snapshot.Items) != 1 {
		t.Fatalf("snapshot has %d items, want 1", len(snapshot.Items))
	}
	if got := itemByID(t, snapshot, "away").Text; got != "0" {
		t.Errorf("new number = %q, want %q", got, "0")
	}

	// Re-adding the dropped id starts fresh.
	eng.ApplyDocument(testDocument())
	if got := itemByID(t, eng.Snapshot(), "home").Text; got != "3" {
		t.Errorf("re-added number = %q, want default %q", got, "3")
	}
}

func TestNumberActions(t *testing.T) {
	eng, _ := newTestEngine(t)

	eng.Apply(Action{Type: ActionNumberDecrease, ID: "home"})
	eng.Apply(Action{Type: ActionNumberDecrease, ID: "home"})
	eng.Apply(Action{Type: ActionNumberDecrease, ID: "home"})
	if got := itemByID(t, eng.Snapshot(), "home").Text; got != "0" {
		t.Errorf("decrement floor = %q, want %q", got, "0")
	}
	if changed := eng.Apply(Action{Type: ActionNumberDecrease, ID: "home"}); changed {
		t.Error("decrement at zero reported a change")
	}

	eng.Apply(Action{Type: ActionNumberIncrease, ID: "home"})
	eng.Apply(Action{Type: ActionNumberReset, ID: "home"})
	if got := itemByID(t, eng.Snapshot(), "home").Text; got != "3" {
		t.Errorf("reset = %q, want configured default %q", got, "3")
	}
}

func TestTimerRoundTrip(t *testing.T) {
	eng, clock := newTestEngine(t)

	eng.Apply(Action{Type: ActionTimerStart, ID: "clock"})
	clock.Advance(65 * time.Second)
	eng.Apply(Action{Type: ActionTimerStop, ID: "clock"})

	eng.mu.Lock()
	elapsed := eng.timers["clock"].elapsed
	eng.mu.Unlock()
	if elapsed != 65*time.Second {
		t.Errorf("elapsed = %v, want 65s", elapsed)
	}
	if got := itemByID(t, eng.Snapshot(), "clock").Text; got != "1:05" {
		t.Errorf("display = %q, want %q", got, "1:05")
	}
}

func TestTimerStartStopIdempotent(t *testing.T) {
	eng, clock := newTestEngine(t)

	if changed := eng.Apply(Action{Type: ActionTimerStop, ID: "clock"}); changed {
		t.Error("stop on a stopped timer reported a change")
	}

	eng.Apply(Action{Type: ActionTimerStart, ID: "clock"})
	clock.Advance(10 * time.Second)
	if changed := eng.Apply(Action{Type: ActionTimerStart, ID: "clock"}); changed {
		t.Error("start on a running timer reported a change")
	}
	clock.Advance(10 * time.Second)
	eng.Apply(Action{Type: ActionTimerStop, ID: "clock"})

	eng.mu.Lock()
	elapsed := eng.timers["clock"].elapsed
	eng.mu.Unlock()
	if elapsed != 20*time.Second {
		t.Errorf("elapsed = %v, want 20s", elapsed)
	}
}

func TestTimerAdjustWhileRunning(t *testing.T) {
	eng, clock := newTestEngine(t)

	eng.Apply(Action{Type: ActionTimerStart, ID: "clock"})
	clock.Advance(10 * time.Second)
	// Adjusting a running timer applies to the live value and re-anchors it.
	eng.Apply(Action{Type: ActionTimerIncrease, ID: "clock"})
	clock.Advance(5 * time.Second)
	eng.Apply(Action{Type: ActionTimerStop, ID: "clock"})

	eng.mu.Lock()
	elapsed := eng.timers["clock"].elapsed
	eng.mu.Unlock()
	if elapsed != 16*time.Second {
		t.Errorf("elapsed = %v, want 16s", elapsed)
	}
}

func TestTimerDecreaseClampsAtZero(t *testing.T) {
	eng, _ := newTestEngine(t)

	eng.Apply(Action{Type: ActionTimerIncrease, ID: "clock"})
	eng.Apply(Action{Type: ActionTimerDecrease, ID: "clock"})
	eng.Apply(Action{Type: ActionTimerDecrease, ID: "clock"})

	eng.mu.Lock()
	elapsed := eng.timers["clock"].elapsed
	eng.mu.Unlock()
	if elapsed != 0 {
		t.Errorf("elapsed = %v, want clamp at 0", elapsed)
	}
}

func TestImageToggleActions(t *testing.T) {
	eng, _ := newTestEngine(t)

	toggleSource := func() string {
		return itemByID(t, eng.Snapshot(), "arrow").Source
	}

	eng.Apply(Action{Type: ActionToggleForward, ID: "arrow"})
	if got := toggleSource(); got != "/tmp/right.png" {
		t.Errorf("after forward = %q, want %q", got, "/tmp/right.png")
	}

	// Backward from the first entry wraps to the last.
	eng.Apply(Action{Type: ActionToggleBackward, ID: "arrow"})
	eng.Apply(Action{Type: ActionToggleBackward, ID: "arrow"})
	if got := toggleSource(); got != "/tmp/none.png" {
		t.Errorf("after wrap backward = %q, want %q", got, "/tmp/none.png")
	}

	// Forward from the last entry wraps to the first.
	eng.Apply(Action{Type: ActionToggleForward, ID: "arrow"})
	if got := toggleSource(); got != "/tmp/left.png" {
		t.Errorf("after wrap forward = %q, want %q", got, "/tmp/left.png")
	}

	if changed := eng.Apply(Action{Type: ActionToggleForward, ID: "ghost"}); changed {
		t.Error("toggle on unknown id reported a change")
	}
}

func TestReconcile_ToggleIndexAndSourceWrap(t *testing.T) {
	eng, _ := newTestEngine(t)

	eng.Apply(Action{Type: ActionToggleForward, ID: "arrow"})
	eng.Apply(Action{Type: ActionToggleForward, ID: "arrow"})

	// A reload keeping the id preserves the index.
	eng.ApplyDocument(testDocument())
	if got := itemByID(t, eng.Snapshot(), "arrow").Source; got != "/tmp/none.png" {
		t.Errorf("toggle after reload = %q, want %q", got, "/tmp/none.png")
	}

	// A shrunk source list wraps the stale index instead of going out of
	// range.
	shrunk := testDocument()
	for i := range shrunk.Components {
		if shrunk.Components[i].ID == "arrow" {
			shrunk.Components[i].Toggle.Sources = []string{"/tmp/left.png", "/tmp/right.png"}
		}
	}
	eng.ApplyDocument(shrunk)
	if got := itemByID(t, eng.Snapshot(), "arrow").Source; got != "/tmp/left.png" {
		t.Errorf("toggle after shrink = %q, want wrapped %q", got, "/tmp/left.png")
	}
}

func TestSetImageSource(t *testing.T) {
	eng, _ := newTestEngine(t)

	if err := eng.SetImageSource("logo", "/tmp/sponsor.png"); err != nil {
		t.Fatalf("SetImageSource: %v", err)
	}
	if got := itemByID(t, eng.Snapshot(), "logo").Source; got != "/tmp/sponsor.png" {
		t.Errorf("source = %q, want replacement", got)
	}

	// The replacement survives a reload that keeps the id.
	eng.ApplyDocument(testDocument())
	if got := itemByID(t, eng.Snapshot(), "logo").Source; got != "/tmp/sponsor.png" {
		t.Errorf("source after reload = %q, want replacement kept", got)
	}

	if err := eng.SetImageSource("home", "/tmp/x.png"); err == nil {
		t.Error("SetImageSource on a number accepted")
	}
	if err := eng.SetImageSource("ghost", "/tmp/x.png"); err == nil {
		t.Error("SetImageSource on an unknown id accepted")
	}
	if err := eng.SetImageSource("logo", ""); err == nil {
		t.Error("empty source accepted")
	}

	events := eng.Subscribe(4)
	if err := eng.SetImageSource("logo", "/tmp/sponsor.png"); err != nil {
		t.Fatalf("SetImageSource repeat: %v", err)
	}
	select {
	case event := <-events:
		t.Fatalf("no-op replacement published %v", event.Type)
	default:
	}
}

func TestSetLabel(t *testing.T) {
	eng, _ := newTestEngine(t)

	if err := eng.SetLabel("title", "Game 7"); err != nil {
		t.Fatalf("SetLabel: %v", err)
	}
	if got := itemByID(t, eng.Snapshot(), "title").Text; got != "Game 7" {
		t.Errorf("label = %q, want %q", got, "Game 7")
	}

	if err := eng.SetLabel("title", "two\nlines"); err == nil {
		t.Error("multi-line label text accepted")
	}
	if err := eng.SetLabel("home", "nope"); err == nil {
		t.Error("SetLabel on a number accepted")
	}
	if err := eng.SetLabel("ghost", "nope"); err == nil {
		t.Error("SetLabel on an unknown id accepted")
	}
}

func TestApply_UnknownID(t *testing.T) {
	eng, _ := newTestEngine(t)
	if changed := eng.Apply(Action{Type: ActionNumberIncrease, ID: "ghost"}); changed {
		t.Error("action on unknown id reported a change")
	}
}

func TestPauseArbitration(t *testing.T) {
	eng, _ := newTestEngine(t)

	if eng.Paused() {
		t.Fatal("engine starts paused")
	}

	if err := eng.BeginEdit("title"); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	if !eng.Paused() {
		t.Error("editing does not pause")
	}
	eng.EndEdit()
	if eng.Paused() {
		t.Error("pause not released after edit")
	}

	// Manual pause survives an edit session.
	if err := eng.SetManualPause(true); err != nil {
		t.Fatalf("SetManualPause: %v", err)
	}
	if err := eng.BeginEdit("title"); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	eng.EndEdit()
	if !eng.Paused() {
		t.Error("manual pause lost after edit session")
	}

	if err := eng.BeginEdit("home"); err == nil {
		t.Error("BeginEdit accepted a non-label component")
	}
}

func TestPauseCaptureGate(t *testing.T) {
	gate := &fakeGate{}
	clock := newFakeClock()
	eng := New(Options{Now: clock.Now, Capture: gate})
	eng.ApplyDocument(testDocument())

	if err := eng.SetManualPause(true); err != nil {
		t.Fatalf("SetManualPause: %v", err)
	}
	// Editing while already paused is not a transition.
	if err := eng.BeginEdit("title"); err != nil {
		t.Fatalf("BeginEdit: %v", err)
	}
	eng.EndEdit()
	if err := eng.SetManualPause(false); err != nil {
		t.Fatalf("SetManualPause: %v", err)
	}

	want := []bool{false, true}
	if len(gate.calls) != len(want) {
		t.Fatalf("gate calls = %v, want %v", gate.calls, want)
	}
	for i, call := range want {
		if gate.calls[i] != call {
			t.Errorf("gate call %d = %v, want %v", i, gate.calls[i], call)
		}
	}
}

func TestPauseRollbackOnGateFailure(t *testing.T) {
	gate := &fakeGate{err: errors.New("hook lost")}
	clock := newFakeClock()
	eng := New(Options{Now: clock.Now, Capture: gate})
	eng.ApplyDocument(testDocument())
	events := eng.Subscribe(4)

	if err := eng.SetManualPause(true); err == nil {
		t.Fatal("SetManualPause succeeded despite failing gate")
	}
	if eng.ManualPaused() {
		t.Error("pause flag not rolled back after gate failure")
	}
	if eng.Paused() {
		t.Error("effective pause desynchronized after gate failure")
	}

	select {
	case event := <-events:
		if event.Type != EventError {
			t.Errorf("event type = %q, want %q", event.Type, EventError)
		}
	default:
		t.Error("no error event emitted for gate failure")
	}

	if err := eng.BeginEdit("title"); err == nil {
		t.Error("BeginEdit succeeded despite failing gate")
	}
	if eng.Paused() {
		t.Error("editing flag not rolled back after gate failure")
	}
}

func TestPublishOnMutation(t *testing.T) {
	eng, _ := newTestEngine(t)
	events := eng.Subscribe(8)

	eng.Apply(Action{Type: ActionNumberIncrease, ID: "home"})

	select {
	case event := <-events:
		if event.Type != EventSnapshot {
			t.Fatalf("event type = %q, want %q", event.Type, EventSnapshot)
		}
		if got := itemByID(t, event.Snapshot, "home").Text; got != "4" {
			t.Errorf("published number = %q, want %q", got, "4")
		}
	default:
		t.Fatal("mutation published no snapshot")
	}

	// A no-op mutation publishes nothing.
	eng.Apply(Action{Type: ActionTimerStop, ID: "clock"})
	select {
	case event := <-events:
		t.Fatalf("no-op mutation published %v", event.Type)
	default:
	}
}

func TestSnapshotVersionIncreases(t *testing.T) {
	eng, _ := newTestEngine(t)
	first := eng.Snapshot().Version
	eng.Apply(Action{Type: ActionNumberIncrease, ID: "home"})
	second := eng.Snapshot().Version
	if second <= first {
		t.Errorf("version did not increase: %d then %d", first, second)
	}
}
