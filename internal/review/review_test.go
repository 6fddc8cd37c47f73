package review_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"artreview/internal/aggregate"
	"artreview/internal/artwork"
	"artreview/internal/config"
	"artreview/internal/multiart"
	"artreview/internal/policy"
	"artreview/internal/providers"
	"artreview/internal/queue"
	"artreview/internal/review"
	"artreview/internal/testsupport"
)

func movieTypes(types ...artwork.ArtType) review.ArtTypesFunc {
	return func(mediaType artwork.MediaType) []artwork.ArtType {
		if mediaType != artwork.MediaMovie {
			return nil
		}
		return types
	}
}

func englishPosters(urls ...string) providers.Images {
	images := providers.Images{}
	for _, url := range urls {
		images.Add(artwork.ArtPoster, testsupport.Candidate("tmdb", url, "en", 5, 1000, 1500))
	}
	return images
}

type harness struct {
	cfg      *config.Config
	store    *queue.Store
	lib      *testsupport.FakeLibrary
	provider *testsupport.StubProvider
	engine   *review.Engine
}

func newHarness(t *testing.T, lib *testsupport.FakeLibrary, images providers.Images) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	stub := testsupport.NewStubProvider("tmdb", images)
	agg := aggregate.New([]providers.Provider{stub})
	engine := review.NewEngine(store, review.NewValidator(lib), agg, artwork.LanguagePolicy{Preferred: "en"})
	return &harness{cfg: cfg, store: store, lib: lib, provider: stub, engine: engine}
}

func (h *harness) scan(t *testing.T, types ...artwork.ArtType) int {
	t.Helper()
	scanner := review.NewScanner(h.lib, h.store, movieTypes(types...), nil)
	res, err := scanner.Scan(context.Background(), artwork.ScopeMovie, artwork.ModeMissingOnly)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	return res.Enqueued
}

// scriptedPresenter selects the first candidate until cancelAfter choices
// have been made, then cancels.
type scriptedPresenter struct {
	cancelAfter int
	chosen      int
}

func (p *scriptedPresenter) Choose(_ context.Context, prompt policy.Prompt) (policy.Choice, error) {
	if p.cancelAfter > 0 && p.chosen >= p.cancelAfter {
		return policy.Choice{Action: policy.ActionCancel}, nil
	}
	p.chosen++
	return policy.Choice{Action: policy.ActionSelect, Candidate: prompt.Candidates[0]}, nil
}

func (p *scriptedPresenter) EditWorkingSet(context.Context, *multiart.WorkingSet, policy.Prompt) (bool, error) {
	return false, nil
}

func TestScanEnqueuesMissingSlotsInPriorityOrder(t *testing.T) {
	lib := testsupport.NewFakeLibrary(
		testsupport.NewMovie(1, "Heat", map[string]string{"poster": "https://old/poster.jpg"}),
		testsupport.NewMovie(2, "Ronin", nil),
	)
	h := newHarness(t, lib, nil)

	if got := h.scan(t, artwork.ArtClearLogo, artwork.ArtPoster, artwork.ArtFanart); got != 5 {
		t.Fatalf("enqueued %d entries, want 5", got)
	}
	entries, err := h.store.Peek(context.Background(), 10)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	want := []struct {
		item int64
		art  artwork.ArtType
	}{
		{1, artwork.ArtFanart},
		{1, artwork.ArtClearLogo},
		{2, artwork.ArtPoster},
		{2, artwork.ArtFanart},
		{2, artwork.ArtClearLogo},
	}
	for i, w := range want {
		if entries[i].ItemID != w.item || entries[i].ArtType != w.art {
			t.Fatalf("entry %d = %d/%s, want %d/%s", i, entries[i].ItemID, entries[i].ArtType, w.item, w.art)
		}
		if entries[i].Baseline != "" {
			t.Fatalf("missing entry %d carries baseline %q", i, entries[i].Baseline)
		}
	}

	if got := h.scan(t, artwork.ArtClearLogo, artwork.ArtPoster, artwork.ArtFanart); got != 0 {
		t.Fatalf("rescan enqueued %d duplicates", got)
	}
}

func TestScanUpgradesCaptureBaseline(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", map[string]string{
		"poster":  "https://old/poster.jpg",
		"fanart1": "https://old/f1.jpg",
		"fanart2": "https://old/f2.jpg",
	}))
	h := newHarness(t, lib, nil)
	scanner := review.NewScanner(lib, h.store, movieTypes(artwork.ArtPoster, artwork.ArtExtraFanart), nil)
	if _, err := scanner.Scan(context.Background(), artwork.ScopeAll, artwork.ModeMissingAndUpgrades); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	entries, err := h.store.Peek(context.Background(), 10)
	if err != nil || len(entries) != 2 {
		t.Fatalf("Peek: %d entries, %v", len(entries), err)
	}
	if entries[0].Baseline != "https://old/poster.jpg" {
		t.Fatalf("poster baseline = %q", entries[0].Baseline)
	}
	if got := entries[1].BaselineValues(); len(got) != 2 || got[1] != "https://old/f2.jpg" {
		t.Fatalf("extrafanart baseline = %v", got)
	}
}

func TestValidator(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", map[string]string{
		"poster":  "https://img/poster.jpg",
		"fanart1": "https://img/f1.jpg",
	}))
	v := review.NewValidator(lib)

	entry := func(art artwork.ArtType, baseline string) *queue.Entry {
		e := testsupport.NewEntry(1, "Heat", art)
		e.Baseline = baseline
		return &e
	}
	cases := []struct {
		name   string
		entry  *queue.Entry
		stale  bool
		reason string
	}{
		{"missing still missing", entry(artwork.ArtClearLogo, ""), false, ""},
		{"missing now filled", entry(artwork.ArtPoster, ""), true, policy.ReasonArtFilled},
		{"upgrade unchanged", entry(artwork.ArtPoster, "https://IMG/poster.jpg"), false, ""},
		{"upgrade changed", entry(artwork.ArtPoster, "https://img/other.jpg"), true, policy.ReasonArtChanged},
		{"extras unchanged", entry(artwork.ArtExtraFanart, "https://img/f1.jpg"), false, ""},
		{"extras added", entry(artwork.ArtExtraFanart, ""), true, policy.ReasonExtrasChanged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, err := v.Validate(ctx, tc.entry)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if verdict.Stale != tc.stale || verdict.Reason != tc.reason {
				t.Fatalf("verdict = %+v, want stale=%v reason=%q", verdict, tc.stale, tc.reason)
			}
			if verdict.Item == nil {
				t.Fatal("expected current item on verdict")
			}
		})
	}

	lib.Remove(artwork.MediaMovie, 1)
	verdict, err := v.Validate(ctx, entry(artwork.ArtPoster, ""))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !verdict.Stale || verdict.Reason != policy.ReasonItemRemoved {
		t.Fatalf("removed item verdict = %+v", verdict)
	}
}

func TestStaleEntryNeverReachesProviders(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	h := newHarness(t, lib, englishPosters("https://img/p.jpg"))
	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyAuto)
	h.scan(t, artwork.ArtPoster)

	lib.SetValue(artwork.MediaMovie, 1, "poster", "https://elsewhere/p.jpg")
	res, err := h.engine.Run(ctx, handle, policy.NewAutomatic(lib, 0, nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stale != 1 || !res.Completed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if h.provider.Calls() != 0 {
		t.Fatalf("provider called %d times for a stale entry", h.provider.Calls())
	}
	if len(lib.Writes()) != 0 {
		t.Fatalf("stale entry written: %v", lib.Writes())
	}
	rep := handle.Session.Report
	if rep.Counts.Stale != 1 || rep.Stale[0].Reason != policy.ReasonArtFilled {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestAutoRunCompletesSession(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil), testsupport.NewMovie(2, "Ronin", nil))
	h := newHarness(t, lib, englishPosters("https://img/p.jpg"))

	var events []review.ProgressEvent
	engine := review.NewEngine(h.store, review.NewValidator(lib), aggregate.New([]providers.Provider{h.provider}),
		artwork.LanguagePolicy{Preferred: "en"},
		review.WithProgress(review.ProgressFunc(func(ev review.ProgressEvent) { events = append(events, ev) })),
	)
	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyAuto)
	h.scan(t, artwork.ArtPoster, artwork.ArtClearLogo)
	res, err := engine.Run(ctx, handle, policy.NewAutomatic(lib, 0, nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Applied != 2 || res.Skipped != 2 || !res.Completed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(events) != 4 || events[3].Done != 4 || events[3].Total != 4 {
		t.Fatalf("unexpected progress events: %+v", events)
	}
	if n, _ := h.store.PendingCount(ctx); n != 0 {
		t.Fatalf("pending = %d after completion", n)
	}

	last, err := h.store.LastReport(ctx)
	if err != nil || last == nil {
		t.Fatalf("LastReport: %v %v", last, err)
	}
	if last.Report.Counts.AutoApplied != 2 || last.Report.Counts.Skipped != 2 {
		t.Fatalf("unexpected counts: %+v", last.Report.Counts)
	}
	if last.Report.Skipped[0].Reason != policy.ReasonNoCompliant {
		t.Fatalf("skip reason = %q", last.Report.Skipped[0].Reason)
	}
	if last.Report.AutoApplied[0].URL != "https://img/p.jpg" || last.Report.AutoApplied[0].Provider != "tmdb" {
		t.Fatalf("unexpected applied row: %+v", last.Report.AutoApplied[0])
	}
}

func TestResumeProcessesEveryEntryOnce(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(
		testsupport.NewMovie(1, "Heat", nil),
		testsupport.NewMovie(2, "Ronin", nil),
		testsupport.NewMovie(3, "Thief", nil),
	)
	h := newHarness(t, lib, englishPosters("https://img/p.jpg"))

	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyManual)
	h.scan(t, artwork.ArtPoster)
	presenter := &scriptedPresenter{cancelAfter: 1}
	manual := policy.NewManual(presenter, lib, review.NewValidator(lib), nil)
	res, err := h.engine.Run(ctx, handle, manual)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Paused || res.Applied != 1 || res.Remaining != 2 {
		t.Fatalf("unexpected first run: %+v", res)
	}
	if err := handle.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	resumed, err := h.store.OpenSession(ctx, queue.SessionRequest{Resume: true})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	defer resumed.Close()
	if resumed.Session.ID != handle.Session.ID {
		t.Fatalf("resumed session %s, want %s", resumed.Session.ID, handle.Session.ID)
	}
	presenter.cancelAfter = 0
	res, err = h.engine.Run(ctx, resumed, manual)
	if err != nil {
		t.Fatalf("Run after resume: %v", err)
	}
	if res.Applied != 2 || !res.Completed {
		t.Fatalf("unexpected second run: %+v", res)
	}

	writes := lib.Writes()
	seen := map[int64]int{}
	for _, w := range writes {
		seen[w.ID]++
	}
	if len(writes) != 3 || seen[1] != 1 || seen[2] != 1 || seen[3] != 1 {
		t.Fatalf("each item must be written exactly once, got %v", seen)
	}
	if resumed.Session.Report.Counts.Selected != 3 {
		t.Fatalf("report selected = %d, want 3", resumed.Session.Report.Counts.Selected)
	}
}

func TestAutoPassInManualSessionIsRecorded(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	h := newHarness(t, lib, englishPosters("https://img/p.jpg"))

	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyManual)
	h.scan(t, artwork.ArtPoster)
	if _, err := h.engine.Run(ctx, handle, policy.NewAutomatic(lib, 0, nil)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	runs := handle.Session.Report.AutoRuns
	if len(runs) != 1 || runs[0].Filled != 1 || runs[0].Remaining != 0 {
		t.Fatalf("unexpected auto runs: %+v", runs)
	}
}

func TestWriteFailureReleasesEntryAndHalts(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	lib.SetArtErr = errors.New("kodi unavailable")
	h := newHarness(t, lib, englishPosters("https://img/p.jpg"))

	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyAuto)
	h.scan(t, artwork.ArtPoster)
	if _, err := h.engine.Run(ctx, handle, policy.NewAutomatic(lib, 0, nil)); err == nil {
		t.Fatal("expected write failure to halt the run")
	}
	entries, err := h.store.List(ctx, queue.StatusPending)
	if err != nil || len(entries) != 1 {
		t.Fatalf("entry not returned to pending: %d %v", len(entries), err)
	}
}

func TestCancelledContextPausesSession(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	h := newHarness(t, lib, englishPosters("https://img/p.jpg"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyAuto)
	h.scan(t, artwork.ArtPoster)
	res, err := h.engine.Run(ctx, handle, policy.NewAutomatic(lib, 0, nil))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Paused || res.Remaining != 1 || res.Completed {
		t.Fatalf("unexpected result: %+v", res)
	}
	if h.provider.Calls() != 0 {
		t.Fatal("no provider call expected after cancellation")
	}
}

func TestAutoPassInManualSessionLeavesUnfilledQueued(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	images := providers.Images{}
	images.Add(artwork.ArtPoster, testsupport.Candidate("tmdb", "https://img/de.jpg", "de", 9, 1000, 1500))
	images.Add(artwork.ArtFanart, testsupport.Candidate("tmdb", "https://img/f.jpg", "en", 5, 1920, 1080))
	h := newHarness(t, lib, images)

	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyManual)
	h.scan(t, artwork.ArtPoster, artwork.ArtFanart)
	auto := policy.NewAutomatic(lib, 0, nil)
	res, err := h.engine.Run(ctx, handle, auto)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Completed || !res.HandedOff || res.Applied != 1 || res.Skipped != 1 || res.Remaining != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}

	pending, err := h.store.List(ctx, queue.StatusPending)
	if err != nil || len(pending) != 1 || pending[0].ArtType != artwork.ArtPoster {
		t.Fatalf("expected unfilled poster left pending, got %v (%v)", pending, err)
	}
	if got := lib.Value(artwork.MediaMovie, 1, "poster"); got != "" {
		t.Fatalf("poster written by automatic pass: %q", got)
	}
	stored, err := h.store.ActiveSession(ctx)
	if err != nil || stored == nil || stored.ID != handle.Session.ID {
		t.Fatalf("expected manual session to stay open, got %#v (%v)", stored, err)
	}
	runs := stored.Report.AutoRuns
	if len(runs) != 1 || runs[0].Filled != 1 || runs[0].Skipped != 1 || runs[0].Remaining != 1 {
		t.Fatalf("unexpected auto runs: %+v", runs)
	}
	if stored.Report.Counts.Skipped != 0 || stored.Report.Counts.AutoApplied != 1 {
		t.Fatalf("left entries must not count as skipped: %+v", stored.Report.Counts)
	}

	// A second pass finds the same entry and still leaves it queued.
	res, err = h.engine.Run(ctx, handle, auto)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if !res.HandedOff || res.Skipped != 1 || res.Remaining != 1 {
		t.Fatalf("unexpected second result: %+v", res)
	}
	if n, _ := h.store.PendingCount(ctx); n != 1 {
		t.Fatalf("pending = %d, want 1", n)
	}
}

func TestFailedReportSaveKeepsEntryQueued(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	h := newHarness(t, lib, nil)

	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyAuto)
	h.scan(t, artwork.ArtPoster)

	other, err := sql.Open("sqlite", h.cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open second connection: %v", err)
	}
	defer other.Close()
	if _, err := other.ExecContext(ctx, "DELETE FROM sessions"); err != nil {
		t.Fatalf("delete session row: %v", err)
	}

	if _, err := h.engine.Run(ctx, handle, policy.NewAutomatic(lib, 0, nil)); err == nil {
		t.Fatal("expected run to fail when the session cannot be saved")
	}
	pending, err := h.store.List(ctx, queue.StatusPending)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected entry still queued, got %v (%v)", pending, err)
	}
	if rep := handle.Session.Report; rep.Resolved() != 0 {
		t.Fatalf("report kept an outcome that was not persisted: %+v", rep.Counts)
	}
}

func TestScanSessionRepeatsInterruptedScan(t *testing.T) {
	ctx := context.Background()
	lib := testsupport.NewFakeLibrary(
		testsupport.NewMovie(1, "Heat", nil),
		testsupport.NewShow(10, "Twin Peaks", nil),
	)
	lib.ItemsErr = map[artwork.MediaType]error{artwork.MediaTVShow: errors.New("kodi timed out")}
	h := newHarness(t, lib, nil)
	posters := func(mediaType artwork.MediaType) []artwork.ArtType {
		if mediaType == artwork.MediaMovie || mediaType == artwork.MediaTVShow {
			return []artwork.ArtType{artwork.ArtPoster}
		}
		return nil
	}
	scanner := review.NewScanner(lib, h.store, posters, nil)

	handle := testsupport.MustOpenSession(t, h.store, artwork.PolicyManual)
	if _, _, err := scanner.ScanSession(ctx, handle); err == nil {
		t.Fatal("expected scan to fail on the second media type")
	}
	if n, _ := h.store.PendingCount(ctx); n != 1 {
		t.Fatalf("pending after partial scan = %d, want 1", n)
	}
	if err := handle.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	lib.ItemsErr = nil
	resumed, err := h.store.OpenSession(ctx, queue.SessionRequest{Resume: true})
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	defer resumed.Close()
	res, scanned, err := scanner.ScanSession(ctx, resumed)
	if err != nil || !scanned {
		t.Fatalf("expected resumed session to rescan, scanned=%v err=%v", scanned, err)
	}
	if res.Enqueued != 1 || res.ByMediaType[artwork.MediaTVShow] != 1 {
		t.Fatalf("unexpected rescan result: %+v", res)
	}
	if n, _ := h.store.PendingCount(ctx); n != 2 {
		t.Fatalf("pending after rescan = %d, want 2", n)
	}
	if _, scanned, err := scanner.ScanSession(ctx, resumed); err != nil || scanned {
		t.Fatalf("expected finished scan to be skipped, scanned=%v err=%v", scanned, err)
	}
}
