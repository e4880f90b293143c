package generator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promptforge/internal/domain/chat"
	"promptforge/internal/domain/file"
	"promptforge/internal/domain/generation"
	"promptforge/internal/domain/job"
	"promptforge/internal/domain/prompt"
	"promptforge/internal/utils/platformerrors"
)

type memoryJobRepo struct {
	mu     sync.Mutex
	nextID uint
	jobs   map[string]*job.Job
}

func newMemoryJobRepo() *memoryJobRepo {
	return &memoryJobRepo{jobs: map[string]*job.Job{}}
}

func (r *memoryJobRepo) notFound(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "job not found", nil, "")
}

func (r *memoryJobRepo) Create(_ context.Context, j *job.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	j.ID = r.nextID
	j.CreatedAt = time.Now()
	cp := *j
	r.jobs[j.PublicID] = &cp
	return nil
}

func (r *memoryJobRepo) GetByPublicID(ctx context.Context, publicID string) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[publicID]
	if !ok {
		return nil, r.notFound(ctx)
	}
	cp := *j
	return &cp, nil
}

func (r *memoryJobRepo) GetByPublicIDAndUserID(ctx context.Context, publicID string, userID uint) (*job.Job, error) {
	j, err := r.GetByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if j.UserID != userID {
		return nil, r.notFound(ctx)
	}
	return j, nil
}

func (r *memoryJobRepo) MarkRunning(_ context.Context, id uint, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, j := range r.jobs {
		if j.ID == id && j.Status == job.StatusQueued {
			j.Status = job.StatusRunning
			j.StartedAt = &at
			j.Attempts++
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryJobRepo) Update(ctx context.Context, j *job.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *j
	r.jobs[j.PublicID] = &cp
	return nil
}

func (r *memoryJobRepo) ListIDsByStatus(_ context.Context, status job.Status, limit int) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for id, j := range r.jobs {
		if j.Status == status && len(ids) < limit {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *memoryJobRepo) ReleaseStale(_ context.Context, startedBefore time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, j := range r.jobs {
		if j.Status == job.StatusRunning && j.StartedAt != nil && j.StartedAt.Before(startedBefore) {
			j.Status = job.StatusQueued
			j.StartedAt = nil
			n++
		}
	}
	return n, nil
}

func (r *memoryJobRepo) DeleteFinishedBefore(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, j := range r.jobs {
		if j.Status.Finished() && j.FinishedAt != nil && j.FinishedAt.Before(before) {
			delete(r.jobs, id)
			n++
		}
	}
	return n, nil
}

type fakeLoader struct {
	prompts map[uint]*prompt.Prompt
}

func (f *fakeLoader) GetPromptByID(ctx context.Context, id uint) (*prompt.Prompt, error) {
	p, ok := f.prompts[id]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound, "Prompt not found", nil, "")
	}
	cp := *p
	return &cp, nil
}

type fakeFiles struct {
	files map[string]*file.File
}

func (f *fakeFiles) FindForPrompt(ctx context.Context, promptID uint, publicIDs []string) ([]*file.File, error) {
	out := make([]*file.File, 0, len(publicIDs))
	for _, id := range publicIDs {
		found, ok := f.files[id]
		if !ok || found.PromptID != promptID {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation, "unknown file "+id, nil, "")
		}
		out = append(out, found)
	}
	return out, nil
}

func (f *fakeFiles) Attachments(_ context.Context, files []*file.File) []generation.Attachment {
	out := make([]generation.Attachment, 0, len(files))
	for _, fl := range files {
		out = append(out, attachment(fl.Name, []byte("contents of "+fl.Name)))
	}
	return out
}

type jobHarness struct {
	*harness
	repo *memoryJobRepo
	jobs *JobService
	p    *prompt.Prompt
}

func newJobHarness(cfg JobConfig) *jobHarness {
	h := newHarness()
	p := peoplePrompt()
	repo := newMemoryJobRepo()
	files := &fakeFiles{files: map[string]*file.File{
		"file_a": {ID: 1, PublicID: "file_a", PromptID: p.ID, Name: "a.txt", MimeType: "text/plain"},
	}}
	jobs := NewJobService(repo, h.svc, &fakeLoader{prompts: map[uint]*prompt.Prompt{p.ID: p}}, files, cfg)
	return &jobHarness{harness: h, repo: repo, jobs: jobs, p: p}
}

func TestEnqueueValidates(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4})
	ctx := context.Background()

	_, err := jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{Content: "   "})
	assert.True(t, platformerrors.IsValidationError(err))

	_, err = jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{Content: "x", FileIDs: []string{"file_missing"}})
	assert.True(t, platformerrors.IsValidationError(err))

	j, err := jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{UseChats: true})
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, j.Status)
	assert.Contains(t, j.PublicID, "job_")
	assert.Len(t, jh.jobs.queue, 1)
}

func TestProcessSucceeds(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4})
	ctx := context.Background()
	jh.transport.resp = textResponse("```json\n[{\"name\":\"Alice\",\"age\":\"30\"}]\n```")

	j, err := jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{Content: "people please", FileIDs: []string{"file_a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"file_a"}, j.FileIDs)

	jh.jobs.Process(ctx, j.PublicID)

	done, err := jh.jobs.Get(ctx, j.PublicID, 9)
	require.NoError(t, err)
	assert.Equal(t, job.StatusSucceeded, done.Status)
	assert.JSONEq(t, `[{"name":"Alice","age":"30"}]`, string(done.Result))
	assert.Equal(t, 1, done.Attempts)
	require.NotNil(t, done.FinishedAt)
	assert.EqualValues(t, 1, jh.st.counts[jh.p.ID])

	// stateless jobs ignore files
	assert.Len(t, jh.transport.requests[0].Contents[0].Parts, 1)
}

func TestProcessRecordsFailure(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4})
	ctx := context.Background()
	jh.st.turns[jh.p.ID] = []*chat.Chat{{Role: chat.RoleUser, Text: "hi"}}
	jh.transport.err = generation.NewFailure(ctx, &generation.Failure{
		Kind:       generation.KindUpstreamError,
		Message:    "provider returned 503",
		StatusCode: 503,
	}, "")

	j, err := jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{UseChats: true})
	require.NoError(t, err)
	jh.jobs.Process(ctx, j.PublicID)

	done, err := jh.jobs.Get(ctx, j.PublicID, 9)
	require.NoError(t, err)
	assert.Equal(t, job.StatusFailed, done.Status)
	require.NotNil(t, done.ErrorKind)
	assert.Equal(t, "upstream_error", *done.ErrorKind)
	assert.Equal(t, "provider returned 503", *done.ErrorMessage)
	assert.Len(t, jh.st.turns[jh.p.ID], 1)
}

func TestProcessSkipsClaimedJob(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4})
	ctx := context.Background()
	jh.transport.resp = textResponse("[]")

	j, err := jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{Content: "x"})
	require.NoError(t, err)
	jh.jobs.Process(ctx, j.PublicID)
	jh.jobs.Process(ctx, j.PublicID)

	assert.Equal(t, 1, jh.transport.calls)
}

func TestGetHidesOtherUsersJobs(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4})
	ctx := context.Background()
	j, err := jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{Content: "x"})
	require.NoError(t, err)

	_, err = jh.jobs.Get(ctx, j.PublicID, 10)
	require.Error(t, err)
	assert.True(t, platformerrors.IsNotFoundError(err))
	assert.Equal(t, "Job not found", err.(*platformerrors.PlatformError).Message)
}

func TestRequeueRespectsQueueCapacity(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 1})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, jh.repo.Create(ctx, &job.Job{PublicID: "job_" + string(rune('a'+i)), Status: job.StatusQueued, Content: "x"}))
	}

	n, err := jh.jobs.Requeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, jh.jobs.queue, 1)
}

func TestSweepDeletesOldFinishedJobs(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4, Retention: time.Hour})
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jh.jobs.now = func() time.Time { return now }

	old := now.Add(-2 * time.Hour)
	recent := now.Add(-10 * time.Minute)
	require.NoError(t, jh.repo.Create(ctx, &job.Job{PublicID: "job_old", Status: job.StatusSucceeded, FinishedAt: &old}))
	require.NoError(t, jh.repo.Create(ctx, &job.Job{PublicID: "job_recent", Status: job.StatusFailed, FinishedAt: &recent}))
	require.NoError(t, jh.repo.Create(ctx, &job.Job{PublicID: "job_waiting", Status: job.StatusQueued}))

	n, err := jh.jobs.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = jh.repo.GetByPublicID(ctx, "job_recent")
	assert.NoError(t, err)
	_, err = jh.repo.GetByPublicID(ctx, "job_waiting")
	assert.NoError(t, err)
}

func TestRunDrainsQueue(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 2, QueueSize: 4})
	jh.transport.resp = textResponse("[]")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	j, err := jh.jobs.Enqueue(ctx, jh.p, 9, EnqueueInput{Content: "x"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- jh.jobs.Run(ctx) }()

	assert.Eventually(t, func() bool {
		stored, err := jh.repo.GetByPublicID(context.Background(), j.PublicID)
		return err == nil && stored.Status == job.StatusSucceeded
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker pool did not stop")
	}
}

func TestProcessInterruptedByShutdownRequeuesJob(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jh.transport.onCall = cancel
	jh.transport.err = generation.NewFailure(context.Background(), &generation.Failure{
		Kind:    generation.KindUpstreamUnavailable,
		Message: "context canceled",
	}, "")

	j, err := jh.jobs.Enqueue(context.Background(), jh.p, 9, EnqueueInput{Content: "x"})
	require.NoError(t, err)
	<-jh.jobs.queue
	jh.jobs.Process(ctx, j.PublicID)

	stored, err := jh.repo.GetByPublicID(context.Background(), j.PublicID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, stored.Status)
	assert.Nil(t, stored.StartedAt)
	assert.Nil(t, stored.FinishedAt)
	assert.Zero(t, jh.st.counts[jh.p.ID])

	n, err := jh.jobs.Requeue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcessStoresOutcomeAfterCancellation(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	jh.transport.resp = textResponse("[]")
	jh.transport.onCall = cancel

	j, err := jh.jobs.Enqueue(context.Background(), jh.p, 9, EnqueueInput{Content: "x"})
	require.NoError(t, err)
	jh.jobs.Process(ctx, j.PublicID)

	stored, err := jh.repo.GetByPublicID(context.Background(), j.PublicID)
	require.NoError(t, err)
	assert.Equal(t, job.StatusSucceeded, stored.Status)
	assert.JSONEq(t, "[]", string(stored.Result))
}

func TestRequeueReleasesStaleRunningJobs(t *testing.T) {
	jh := newJobHarness(JobConfig{Workers: 1, QueueSize: 4, StaleAfter: 15 * time.Minute})
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	jh.jobs.now = func() time.Time { return now }

	stale := now.Add(-time.Hour)
	fresh := now.Add(-time.Minute)
	require.NoError(t, jh.repo.Create(ctx, &job.Job{PublicID: "job_stale", Status: job.StatusRunning, StartedAt: &stale}))
	require.NoError(t, jh.repo.Create(ctx, &job.Job{PublicID: "job_fresh", Status: job.StatusRunning, StartedAt: &fresh}))

	n, err := jh.jobs.Requeue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	released, err := jh.repo.GetByPublicID(ctx, "job_stale")
	require.NoError(t, err)
	assert.Equal(t, job.StatusQueued, released.Status)
	running, err := jh.repo.GetByPublicID(ctx, "job_fresh")
	require.NoError(t, err)
	assert.Equal(t, job.StatusRunning, running.Status)
}
