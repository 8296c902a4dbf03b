package scheduler_test

import (
	"context"
	"errors"
	"testing"

	"speechcrawler/internal/scheduler"
	"speechcrawler/internal/store"
	"speechcrawler/internal/testsupport"
)

func newScheduler(t *testing.T, limits scheduler.Limits) (*scheduler.Scheduler, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return scheduler.New(st, limits), st
}

func TestSearchJobsStartAtPageOne(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{SearchPageLimit: 5})
	ctx := context.Background()
	testsupport.SeedQuery(t, st, "test")

	jobs, err := sched.SearchJobs(ctx)
	if err != nil {
		t.Fatalf("SearchJobs failed: %v", err)
	}
	if len(jobs) != 5 {
		t.Fatalf("expected 5 jobs, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.Query != "test" || job.Page != i+1 {
			t.Fatalf("unexpected job %d: %+v", i, job)
		}
	}
}

func TestSearchJobsResumeFromWatermark(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{SearchPageLimit: 10})
	ctx := context.Background()
	testsupport.SeedQuery(t, st, "test")
	if err := st.SetQueryWatermark(ctx, "test", 7); err != nil {
		t.Fatalf("SetQueryWatermark failed: %v", err)
	}

	jobs, err := sched.SearchJobs(ctx)
	if err != nil {
		t.Fatalf("SearchJobs failed: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("expected pages 8..10, got %d jobs", len(jobs))
	}
	if jobs[0].Page != 8 || jobs[2].Page != 10 {
		t.Fatalf("unexpected resumed pages: %+v", jobs)
	}
}

func TestCompleteSearchJobFlipsDoneAtCeiling(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{SearchPageLimit: 2})
	ctx := context.Background()
	testsupport.SeedQuery(t, st, "test")

	if err := sched.CompleteSearchJob(ctx, scheduler.SearchJob{Query: "test", Page: 1}); err != nil {
		t.Fatalf("CompleteSearchJob failed: %v", err)
	}
	q, err := st.GetSearchQuery(ctx, "test")
	if err != nil {
		t.Fatalf("GetSearchQuery failed: %v", err)
	}
	if q.Status != store.StatusNew {
		t.Fatalf("query must stay new before the ceiling, got %s", q.Status)
	}

	if err := sched.CompleteSearchJob(ctx, scheduler.SearchJob{Query: "test", Page: 2}); err != nil {
		t.Fatalf("CompleteSearchJob failed: %v", err)
	}
	q, err = st.GetSearchQuery(ctx, "test")
	if err != nil {
		t.Fatalf("GetSearchQuery failed: %v", err)
	}
	if q.Status != store.StatusDone {
		t.Fatalf("expected done at ceiling, got %s", q.Status)
	}
}

func TestSearchQueueEndToEnd(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{SearchPageLimit: 30})
	ctx := context.Background()
	testsupport.SeedQuery(t, st, "test")

	jobs, err := sched.SearchJobs(ctx)
	if err != nil {
		t.Fatalf("SearchJobs failed: %v", err)
	}
	if len(jobs) != 30 {
		t.Fatalf("expected 30 pages, got %d", len(jobs))
	}
	for i, job := range jobs {
		if job.Page != i+1 {
			t.Fatalf("pages must be issued in order, got %d at %d", job.Page, i)
		}
		if err := sched.CompleteSearchJob(ctx, job); err != nil {
			t.Fatalf("CompleteSearchJob page %d failed: %v", job.Page, err)
		}
	}

	remaining, err := sched.SearchJobs(ctx)
	if err != nil {
		t.Fatalf("SearchJobs failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("finished query must yield no more jobs, got %d", len(remaining))
	}
	hasWork, err := sched.HasWork(ctx)
	if err != nil {
		t.Fatalf("HasWork failed: %v", err)
	}
	if hasWork {
		t.Fatal("expected no remaining work")
	}
}

func TestChannelJobsRespectDeclaredSizeAndCap(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{SearchPageLimit: 30, MaxChannelSize: 10})
	ctx := context.Background()

	if err := st.AddChannel(ctx, "UCsmall", 4); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}
	if err := st.AddChannel(ctx, "UCbig", 50); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}

	jobs, err := sched.ChannelJobs(ctx)
	if err != nil {
		t.Fatalf("ChannelJobs failed: %v", err)
	}
	counts := map[string]int{}
	for _, job := range jobs {
		counts[job.ChannelID]++
	}
	if counts["UCsmall"] != 4 {
		t.Fatalf("expected 4 jobs for declared size 4, got %d", counts["UCsmall"])
	}
	if counts["UCbig"] != 10 {
		t.Fatalf("expected cap at 10 jobs, got %d", counts["UCbig"])
	}
}

func TestCompleteChannelJobFlipsDoneAtSize(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{MaxChannelSize: 100})
	ctx := context.Background()
	if err := st.AddChannel(ctx, "UC1", 2); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}

	if err := sched.CompleteChannelJob(ctx, scheduler.ChannelJob{ChannelID: "UC1", Index: 1}); err != nil {
		t.Fatalf("CompleteChannelJob failed: %v", err)
	}
	ch, err := st.GetChannel(ctx, "UC1")
	if err != nil {
		t.Fatalf("GetChannel failed: %v", err)
	}
	if ch.Status != store.StatusNew {
		t.Fatalf("channel must stay new before its size, got %s", ch.Status)
	}

	if err := sched.CompleteChannelJob(ctx, scheduler.ChannelJob{ChannelID: "UC1", Index: 2}); err != nil {
		t.Fatalf("CompleteChannelJob failed: %v", err)
	}
	ch, err = st.GetChannel(ctx, "UC1")
	if err != nil {
		t.Fatalf("GetChannel failed: %v", err)
	}
	if ch.Status != store.StatusDone {
		t.Fatalf("expected done at declared size, got %s", ch.Status)
	}
}

func TestMediaJobsCompleteAtomically(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{})
	ctx := context.Background()
	testsupport.SeedMedia(t, st, "vid-1", "UC1")
	testsupport.SeedMedia(t, st, "vid-2", "")

	jobs, err := sched.MediaJobs(ctx)
	if err != nil {
		t.Fatalf("MediaJobs failed: %v", err)
	}
	if len(jobs) != 2 || jobs[0].MediaID != "vid-1" {
		t.Fatalf("unexpected media jobs: %+v", jobs)
	}

	if err := sched.CompleteMediaJob(ctx, jobs[0], store.StatusDone); err != nil {
		t.Fatalf("CompleteMediaJob failed: %v", err)
	}
	if err := sched.CompleteMediaJob(ctx, jobs[1], store.StatusSubtitlesInvalid); err != nil {
		t.Fatalf("CompleteMediaJob failed: %v", err)
	}

	remaining, err := sched.MediaJobs(ctx)
	if err != nil {
		t.Fatalf("MediaJobs failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected drained media queue, got %d", len(remaining))
	}
}

func TestCompleteForUnknownKeySurfacesNotFound(t *testing.T) {
	sched, _ := newScheduler(t, scheduler.Limits{})
	ctx := context.Background()

	err := sched.CompleteSearchJob(ctx, scheduler.SearchJob{Query: "ghost", Page: 1})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	err = sched.CompleteMediaJob(ctx, scheduler.MediaJob{MediaID: "ghost"}, store.StatusDone)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for media, got %v", err)
	}
}

func TestHasWorkConsultsQueriesAndChannels(t *testing.T) {
	sched, st := newScheduler(t, scheduler.Limits{})
	ctx := context.Background()

	hasWork, err := sched.HasWork(ctx)
	if err != nil || hasWork {
		t.Fatalf("empty store must have no work (work=%v err=%v)", hasWork, err)
	}

	testsupport.SeedMedia(t, st, "vid-1", "")
	hasWork, err = sched.HasWork(ctx)
	if err != nil {
		t.Fatalf("HasWork failed: %v", err)
	}
	if hasWork {
		t.Fatal("media backlog alone must not keep the enumeration loop alive")
	}

	if err := st.AddChannel(ctx, "UC1", 5); err != nil {
		t.Fatalf("AddChannel failed: %v", err)
	}
	hasWork, err = sched.HasWork(ctx)
	if err != nil || !hasWork {
		t.Fatalf("expected channel backlog to report work (work=%v err=%v)", hasWork, err)
	}
}
