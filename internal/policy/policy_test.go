package policy_test

import (
	"context"
	"errors"
	"testing"

	"artreview/internal/aggregate"
	"artreview/internal/artwork"
	"artreview/internal/multiart"
	"artreview/internal/policy"
	"artreview/internal/queue"
	"artreview/internal/report"
	"artreview/internal/testsupport"
)

type fakePresenter struct {
	choice  policy.Choice
	err     error
	edit    func(ws *multiart.WorkingSet) bool
	prompts []policy.Prompt
}

func (p *fakePresenter) Choose(_ context.Context, prompt policy.Prompt) (policy.Choice, error) {
	p.prompts = append(p.prompts, prompt)
	return p.choice, p.err
}

func (p *fakePresenter) EditWorkingSet(_ context.Context, ws *multiart.WorkingSet, prompt policy.Prompt) (bool, error) {
	p.prompts = append(p.prompts, prompt)
	if p.edit == nil {
		return false, p.err
	}
	return p.edit(ws), p.err
}

type fixedChecker struct {
	verdict policy.Verdict
	calls   int
}

func (c *fixedChecker) Validate(context.Context, *queue.Entry) (policy.Verdict, error) {
	c.calls++
	return c.verdict, nil
}

func newTask(t *testing.T, lib *testsupport.FakeLibrary, entry queue.Entry, result aggregate.Result) policy.Task {
	t.Helper()
	item, err := lib.Item(context.Background(), entry.ItemType, entry.ItemID)
	if err != nil || item == nil {
		t.Fatalf("library item %d: %v", entry.ItemID, err)
	}
	return policy.Task{Entry: &entry, Item: item, Result: result, Remaining: 3}
}

func englishResult(all ...artwork.Candidate) aggregate.Result {
	filter := artwork.NewLanguageFilter("en")
	res := aggregate.Result{All: all, Filter: filter}
	for _, c := range all {
		if filter.Matches(c) {
			res.Filtered = append(res.Filtered, c)
		}
	}
	return res
}

func TestAutomaticAppliesTopCompliantCandidate(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	auto := policy.NewAutomatic(lib, 0, nil)

	result := englishResult(
		testsupport.Candidate("tmdb", "https://img/de.jpg", "de", 9, 1000, 1500),
		testsupport.Candidate("tmdb", "https://img/en.jpg", "en", 7, 1000, 1500),
	)
	out, err := auto.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtPoster), result))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != policy.OutcomeApplied || out.Policy != report.PolicyAuto {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if got := lib.Value(artwork.MediaMovie, 1, "poster"); got != "https://img/en.jpg" {
		t.Fatalf("poster = %q, want english candidate", got)
	}
}

func TestAutomaticSkipsWithoutCompliantCandidate(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	auto := policy.NewAutomatic(lib, 0, nil)

	result := englishResult(testsupport.Candidate("tmdb", "https://img/de.jpg", "de", 9, 1000, 1500))
	out, err := auto.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtPoster), result))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != policy.OutcomeSkipped || out.Reason != policy.ReasonNoCompliant {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(lib.Writes()) != 0 {
		t.Fatalf("expected no writes, got %v", lib.Writes())
	}
}

func TestAutomaticPreservesExistingArt(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", map[string]string{"poster": "https://old.jpg"}))
	auto := policy.NewAutomatic(lib, 0, nil)

	entry := testsupport.NewEntry(1, "Heat", artwork.ArtPoster)
	entry.Baseline = "https://old.jpg"
	result := englishResult(testsupport.Candidate("tmdb", "https://img/en.jpg", "en", 9, 1000, 1500))
	out, err := auto.Resolve(context.Background(), newTask(t, lib, entry, result))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != policy.OutcomeSkipped || out.Reason != policy.ReasonPreserved {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if got := lib.Value(artwork.MediaMovie, 1, "poster"); got != "https://old.jpg" {
		t.Fatalf("poster overwritten: %q", got)
	}
}

func TestAutomaticMultiArt(t *testing.T) {
	textless := func(url string) artwork.Candidate {
		return testsupport.Candidate("fanart.tv", url, "", 5, 1920, 1080)
	}
	result := aggregate.Result{Filter: artwork.LanguageFilter{Active: true}}
	result.All = []artwork.Candidate{textless("https://f/1.jpg"), textless("https://f/2.jpg"), textless("https://f/3.jpg")}
	result.Filtered = result.All

	t.Run("disabled", func(t *testing.T) {
		lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
		out, err := policy.NewAutomatic(lib, 0, nil).Resolve(context.Background(),
			newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtExtraFanart), result))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != policy.OutcomeSkipped || out.Reason != policy.ReasonMultiManualOnly {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	})

	t.Run("fills up to count", func(t *testing.T) {
		lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
		out, err := policy.NewAutomatic(lib, 2, nil).Resolve(context.Background(),
			newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtExtraFanart), result))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != policy.OutcomeApplied || len(out.URLs) != 2 {
			t.Fatalf("unexpected outcome: %+v", out)
		}
		if got := lib.Value(artwork.MediaMovie, 1, "fanart2"); got != "https://f/2.jpg" {
			t.Fatalf("fanart2 = %q", got)
		}
		if got := lib.Value(artwork.MediaMovie, 1, "fanart3"); got != "" {
			t.Fatalf("fanart3 should stay empty, got %q", got)
		}
	})
}

func TestAutomaticReturnsWriteError(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	lib.SetArtErr = errors.New("kodi down")
	result := englishResult(testsupport.Candidate("tmdb", "https://img/en.jpg", "en", 9, 1000, 1500))
	_, err := policy.NewAutomatic(lib, 0, nil).Resolve(context.Background(),
		newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtPoster), result))
	if err == nil {
		t.Fatal("expected write error")
	}
}

func TestManualSelectWritesChoice(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	german := testsupport.Candidate("tmdb", "https://img/de.jpg", "de", 9, 1000, 1500)
	presenter := &fakePresenter{choice: policy.Choice{Action: policy.ActionSelect, Candidate: german}}
	checker := &fixedChecker{}
	manual := policy.NewManual(presenter, lib, checker, nil)

	result := englishResult(german, testsupport.Candidate("tmdb", "https://img/en.jpg", "en", 7, 1000, 1500))
	out, err := manual.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtPoster), result))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != policy.OutcomeApplied || out.Policy != report.PolicyManual {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if got := lib.Value(artwork.MediaMovie, 1, "poster"); got != german.URL {
		t.Fatalf("poster = %q, want non-compliant user choice", got)
	}
	if checker.calls != 1 {
		t.Fatalf("expected one staleness recheck, got %d", checker.calls)
	}

	prompt := presenter.prompts[0]
	if prompt.Total != 2 || prompt.FilteredCount != 1 || prompt.Remaining != 3 {
		t.Fatalf("unexpected prompt counts: %+v", prompt)
	}
	if prompt.Compliant(german) {
		t.Fatal("german candidate should not be compliant")
	}
	if prompt.Title != "Heat (1995) poster" {
		t.Fatalf("prompt title = %q", prompt.Title)
	}
}

func TestManualSkipAndCancel(t *testing.T) {
	result := englishResult(testsupport.Candidate("tmdb", "https://img/en.jpg", "en", 7, 1000, 1500))
	cases := []struct {
		action policy.Action
		want   policy.OutcomeKind
	}{
		{policy.ActionSkip, policy.OutcomeSkipped},
		{policy.ActionCancel, policy.OutcomeCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.action.String(), func(t *testing.T) {
			lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
			manual := policy.NewManual(&fakePresenter{choice: policy.Choice{Action: tc.action}}, lib, &fixedChecker{}, nil)
			out, err := manual.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtPoster), result))
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if out.Kind != tc.want {
				t.Fatalf("kind = %s, want %s", out.Kind, tc.want)
			}
			if _, ok := out.Kind.QueueStatus(); ok != (tc.want != policy.OutcomeCancelled) {
				t.Fatalf("unexpected queue status mapping for %s", out.Kind)
			}
			if len(lib.Writes()) != 0 {
				t.Fatalf("expected no writes, got %v", lib.Writes())
			}
		})
	}
}

func TestManualSkipsWhenNoCandidates(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	presenter := &fakePresenter{}
	manual := policy.NewManual(presenter, lib, &fixedChecker{}, nil)
	out, err := manual.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtPoster), englishResult()))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != policy.OutcomeSkipped || out.Reason != policy.ReasonNoCandidates {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(presenter.prompts) != 0 {
		t.Fatal("presenter should not be asked without candidates")
	}
}

func TestManualStaleBeforeWrite(t *testing.T) {
	lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", nil))
	choice := testsupport.Candidate("tmdb", "https://img/en.jpg", "en", 7, 1000, 1500)
	checker := &fixedChecker{verdict: policy.Verdict{Stale: true, Reason: policy.ReasonArtFilled}}
	manual := policy.NewManual(&fakePresenter{choice: policy.Choice{Action: policy.ActionSelect, Candidate: choice}}, lib, checker, nil)

	out, err := manual.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtPoster), englishResult(choice)))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if out.Kind != policy.OutcomeStale || out.Reason != policy.ReasonArtFilled {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(lib.Writes()) != 0 {
		t.Fatalf("stale entry must not be written, got %v", lib.Writes())
	}
}

func TestManualMultiArt(t *testing.T) {
	existing := map[string]string{"fanart1": "https://f/a.jpg", "fanart2": "https://f/b.jpg", "fanart3": "https://f/c.jpg"}
	result := aggregate.Result{All: []artwork.Candidate{testsupport.Candidate("fanart.tv", "https://f/new.jpg", "", 5, 1920, 1080)}}
	result.Filtered = result.All

	t.Run("commit", func(t *testing.T) {
		lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", existing))
		presenter := &fakePresenter{edit: func(ws *multiart.WorkingSet) bool {
			if err := ws.Remove(0); err != nil {
				t.Fatalf("Remove: %v", err)
			}
			if err := ws.Add(result.All[0]); err != nil {
				t.Fatalf("Add: %v", err)
			}
			return true
		}}
		manual := policy.NewManual(presenter, lib, &fixedChecker{}, nil)
		out, err := manual.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtExtraFanart), result))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != policy.OutcomeApplied || len(out.URLs) != 3 {
			t.Fatalf("unexpected outcome: %+v", out)
		}
		want := map[string]string{"fanart1": "https://f/b.jpg", "fanart2": "https://f/c.jpg", "fanart3": "https://f/new.jpg"}
		for slot, url := range want {
			if got := lib.Value(artwork.MediaMovie, 1, slot); got != url {
				t.Fatalf("%s = %q, want %q", slot, got, url)
			}
		}
	})

	t.Run("unchanged", func(t *testing.T) {
		lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", existing))
		manual := policy.NewManual(&fakePresenter{edit: func(*multiart.WorkingSet) bool { return true }}, lib, &fixedChecker{}, nil)
		out, err := manual.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtExtraFanart), result))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != policy.OutcomeSkipped || out.Reason != policy.ReasonNoChanges {
			t.Fatalf("unexpected outcome: %+v", out)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		lib := testsupport.NewFakeLibrary(testsupport.NewMovie(1, "Heat", existing))
		manual := policy.NewManual(&fakePresenter{edit: func(*multiart.WorkingSet) bool { return false }}, lib, &fixedChecker{}, nil)
		out, err := manual.Resolve(context.Background(), newTask(t, lib, testsupport.NewEntry(1, "Heat", artwork.ArtExtraFanart), result))
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if out.Kind != policy.OutcomeCancelled {
			t.Fatalf("unexpected outcome: %+v", out)
		}
		if len(lib.Writes()) != 0 {
			t.Fatalf("cancelled edit must not write, got %v", lib.Writes())
		}
	})
}
