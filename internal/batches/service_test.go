package batches

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applygen-backend/internal/archive"
	"applygen-backend/internal/candidates"
	"applygen-backend/internal/catalog"
	"applygen-backend/internal/generation"
	"applygen-backend/internal/llm"
	"applygen-backend/internal/llm/llmtest"
	"applygen-backend/internal/shared/storage/object/local"
	"applygen-backend/resume/render"
)

const (
	seniorJD  = "Seeking a Senior Backend Engineer, 5+ years, German required"
	bachelors = "Bachelor of Science in Computer Science"
)

var testNow = time.Date(2026, 3, 7, 14, 5, 9, 0, time.UTC)

type fakeQueue struct {
	sent []string
	err  error
}

func (q *fakeQueue) Enqueue(_ context.Context, batchID string) error {
	if q.err != nil {
		return q.err
	}
	q.sent = append(q.sent, batchID)
	return nil
}

func newTestService(t *testing.T, client llm.Client, workers int) *Service {
	t.Helper()
	cat := catalog.Default()
	src := candidates.NewSource(42)
	clock := func() time.Time { return testNow }
	gen := generation.NewGenerator(client, cat.Companies(), src, generation.WithClock(clock))
	return &Service{
		Repo:         NewMemoryRepo(),
		Store:        local.New(t.TempDir()),
		Catalog:      cat,
		Orchestrator: NewOrchestrator(cat, gen, src, WithWorkers(workers)),
		Packager:     archive.NewPackager(render.NewRenderer(render.NewPDFEngine(), render.WithClock(clock)), archive.WithClock(clock)),
		Responder:    generation.NewResponder(client),
		Now:          clock,
	}
}

func readArchive(t *testing.T, svc *Service, userID, batchID string) []string {
	t.Helper()
	rc, _, err := svc.OpenArchive(context.Background(), userID, batchID)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	return names
}

func countPrefix(names []string, prefix string) int {
	n := 0
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			n++
		}
	}
	return n
}

func TestCreateSyncGeneratesGermanBatch(t *testing.T) {
	fake := llmtest.NewFake()
	svc := newTestService(t, fake, 3)

	b, queued, err := svc.Create(context.Background(), "user-1", CreateRequest{
		JobDescription: seniorJD,
		Count:          6,
		EducationLevel: bachelors,
		Country:        "Germany",
	})
	require.NoError(t, err)
	assert.False(t, queued)
	assert.Equal(t, StatusCompleted, b.Status)
	require.Len(t, b.Entries, 6)

	for i, e := range b.Entries {
		assert.Equal(t, i, e.Position)
		assert.Equal(t, 3, e.Plan.FullTimeRoles, e.Candidate.Name)
		assert.Equal(t, 1, e.Plan.Internships, e.Candidate.Name)
		hasGerman := false
		for _, lang := range e.Resume.Languages {
			if strings.HasPrefix(lang, "German") {
				hasGerman = true
			}
		}
		assert.True(t, hasGerman, "languages of %s: %v", e.Candidate.Name, e.Resume.Languages)
		assert.Equal(t, llmtest.CoverLetter, e.CoverLetter)
	}

	names := readArchive(t, svc, "user-1", b.ID)
	assert.Len(t, names, 12)
	assert.Equal(t, 6, countPrefix(names, "Resumes/"))
	assert.Equal(t, 6, countPrefix(names, "Cover_Letters/"))
	assert.Equal(t, "applications_germany_0307_140509.zip", b.ArchiveName)
	assert.Equal(t, "batches/"+b.ID+"/"+b.ArchiveName, b.ArchiveKey)
	assert.Equal(t, 6, len(fake.CallsFor(llm.PurposeResume)))
}

func TestCreateDropsFailedCandidate(t *testing.T) {
	var resumeCalls int32
	fake := llmtest.NewFake()
	fake.Respond = func(req llm.Request) (string, error) {
		if req.Purpose == llm.PurposeResume && atomic.AddInt32(&resumeCalls, 1) == 3 {
			return "", errors.New("upstream unavailable")
		}
		return llmtest.DefaultResponse(req)
	}
	// One worker makes the third call belong to the third candidate.
	svc := newTestService(t, fake, 1)

	b, _, err := svc.Create(context.Background(), "user-1", CreateRequest{
		JobDescription: seniorJD,
		Count:          6,
		EducationLevel: bachelors,
		Country:        "Germany",
	})
	require.NoError(t, err)
	require.Len(t, b.Entries, 5)

	names := readArchive(t, svc, "user-1", b.ID)
	assert.Len(t, names, 10)
	assert.Equal(t, 5, countPrefix(names, "Resumes/"))
}

func TestCreateSurvivesPanickingCandidate(t *testing.T) {
	var resumeCalls int32
	fake := llmtest.NewFake()
	fake.Respond = func(req llm.Request) (string, error) {
		if req.Purpose == llm.PurposeResume && atomic.AddInt32(&resumeCalls, 1) == 1 {
			panic("client exploded")
		}
		return llmtest.DefaultResponse(req)
	}
	svc := newTestService(t, fake, 1)

	b, _, err := svc.Create(context.Background(), "user-1", CreateRequest{
		JobDescription: "Backend engineer",
		Count:          2,
		EducationLevel: bachelors,
		Country:        "Germany",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, b.Status)
	require.Len(t, b.Entries, 1)

	names := readArchive(t, svc, "user-1", b.ID)
	assert.Len(t, names, 2)
	assert.Equal(t, 1, countPrefix(names, "Resumes/"))
}

func TestOrchestratorRecoversPanic(t *testing.T) {
	var resumeCalls int32
	fake := llmtest.NewFake()
	fake.Respond = func(req llm.Request) (string, error) {
		if req.Purpose == llm.PurposeResume && atomic.AddInt32(&resumeCalls, 1) == 2 {
			panic("client exploded")
		}
		return llmtest.DefaultResponse(req)
	}
	svc := newTestService(t, fake, 1)

	res, err := svc.Orchestrator.RunBatch(context.Background(), Request{
		JobDescription: "Backend engineer",
		Count:          2,
		EducationLevel: bachelors,
		Country:        "Germany",
	})
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 2)
	assert.NoError(t, res.Outcomes[0].Err)
	require.Error(t, res.Outcomes[1].Err)
	assert.True(t, errors.Is(res.Outcomes[1].Err, generation.ErrGeneration))
	assert.Contains(t, res.Outcomes[1].Err.Error(), "panicked")
	assert.Equal(t, 1, res.Failures())
}

func TestCreateAllCandidatesFail(t *testing.T) {
	fake := llmtest.NewFake()
	fake.Respond = func(req llm.Request) (string, error) {
		if req.Purpose == llm.PurposeResume {
			return "not json", nil
		}
		return llmtest.DefaultResponse(req)
	}
	svc := newTestService(t, fake, 2)

	_, _, err := svc.Create(context.Background(), "user-1", CreateRequest{
		JobDescription: "Backend engineer",
		Count:          2,
		EducationLevel: bachelors,
		Country:        "Germany",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBatchFailed))

	list, err := svc.List(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, StatusFailed, list[0].Status)
	assert.NotEmpty(t, list[0].ErrorMessage)
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t, llmtest.NewFake(), 1)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateRequest
		want error
	}{
		{"blank job description", CreateRequest{JobDescription: "  ", Count: 3, EducationLevel: bachelors, Country: "Germany"}, ErrEmptyInput},
		{"zero count", CreateRequest{JobDescription: "jd", Count: 0, EducationLevel: bachelors, Country: "Germany"}, ErrEmptyInput},
		{"unknown country", CreateRequest{JobDescription: "jd", Count: 3, EducationLevel: bachelors, Country: "Atlantis"}, ErrInvalidInput},
		{"unknown level", CreateRequest{JobDescription: "jd", Count: 3, EducationLevel: "PhD", Country: "Germany"}, ErrInvalidInput},
		{"missing country", CreateRequest{JobDescription: "jd", Count: 3, EducationLevel: bachelors}, ErrInvalidInput},
		{"count above max", CreateRequest{JobDescription: "jd", Count: 99, EducationLevel: bachelors, Country: "Germany"}, ErrInvalidInput},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Create(ctx, "user-1", tt.req)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, _, err := svc.Create(ctx, "", CreateRequest{JobDescription: "jd", Count: 3, EducationLevel: bachelors, Country: "Germany"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing user, got %v", err)
	}
}

func TestCreateQueuedThenProcess(t *testing.T) {
	svc := newTestService(t, llmtest.NewFake(), 2)
	q := &fakeQueue{}
	svc.Queue = q
	ctx := context.Background()

	b, queued, err := svc.Create(ctx, "user-1", CreateRequest{
		JobDescription: "Backend engineer with 2 years of Go",
		Count:          2,
		EducationLevel: bachelors,
		Country:        "Germany",
	})
	require.NoError(t, err)
	assert.True(t, queued)
	assert.Equal(t, StatusQueued, b.Status)
	assert.Equal(t, []string{b.ID}, q.sent)

	_, _, err = svc.OpenArchive(ctx, "user-1", b.ID)
	assert.True(t, errors.Is(err, ErrNotReady))

	done, err := svc.Process(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Len(t, done.Entries, 2)

	again, err := svc.Process(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, done.Entries[0].ID, again.Entries[0].ID)
}

func TestCreateEnqueueFailureMarksBatchFailed(t *testing.T) {
	svc := newTestService(t, llmtest.NewFake(), 1)
	svc.Queue = &fakeQueue{err: errors.New("sqs down")}

	_, _, err := svc.Create(context.Background(), "user-1", CreateRequest{
		JobDescription: "jd", Count: 2, EducationLevel: bachelors, Country: "Germany",
	})
	require.Error(t, err)

	list, err := svc.List(context.Background(), "user-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, StatusFailed, list[0].Status)
}

func TestServiceOwnershipAndAnswer(t *testing.T) {
	svc := newTestService(t, llmtest.NewFake(), 2)
	ctx := context.Background()

	b, _, err := svc.Create(ctx, "owner", CreateRequest{
		JobDescription: "Backend engineer", Count: 2, EducationLevel: bachelors, Country: "Germany",
	})
	require.NoError(t, err)

	_, err = svc.Get(ctx, "intruder", b.ID)
	assert.True(t, errors.Is(err, ErrForbidden))
	_, _, err = svc.OpenArchive(ctx, "intruder", b.ID)
	assert.True(t, errors.Is(err, ErrForbidden))

	entryID := b.Entries[0].ID
	_, err = svc.Answer(ctx, "owner", b.ID, entryID, "   ")
	assert.True(t, errors.Is(err, ErrEmptyInput))

	answer, err := svc.Answer(ctx, "owner", b.ID, entryID, "Have you run Kubernetes in production?")
	require.NoError(t, err)
	assert.NotEmpty(t, answer)
	assert.NotContains(t, answer, "production Kubernetes")

	_, err = svc.Answer(ctx, "owner", b.ID, "missing", "Why us?")
	assert.True(t, errors.Is(err, ErrNotFound))
}
