package app

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-screener/internal/model"
	"resume-screener/internal/storage"
	"resume-screener/internal/textproc"
)

type fakePointerRepo struct {
	mu       sync.Mutex
	sessions map[uint]model.ActiveSession
}

func newFakePointerRepo() *fakePointerRepo {
	return &fakePointerRepo{sessions: make(map[uint]model.ActiveSession)}
}

func (r *fakePointerRepo) Create(session *model.ActiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[session.UserID]; exists {
		return fmt.Errorf("duplicate active session for user %d", session.UserID)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	r.sessions[session.UserID] = *session
	return nil
}

func (r *fakePointerRepo) GetByUserID(userID uint) (*model.ActiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}
	copied := session
	return &copied, nil
}

func (r *fakePointerRepo) DeleteByUserID(userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}

func (r *fakePointerRepo) ListCreatedBefore(cutoff time.Time) ([]model.ActiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ActiveSession
	for _, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakePointerRepo) backdate(userID uint, age time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sessions[userID]
	s.CreatedAt = time.Now().Add(-age)
	r.sessions[userID] = s
}

type fakeResumeRepo struct {
	mu      sync.Mutex
	resumes map[string][]model.Resume
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{resumes: make(map[string][]model.Resume)}
}

func (r *fakeResumeRepo) Create(resume *model.Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resumes[resume.SessionID] = append(r.resumes[resume.SessionID], *resume)
	return nil
}

func (r *fakeResumeRepo) ListBySessionID(sessionID string) ([]model.Resume, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]model.Resume(nil), r.resumes[sessionID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeResumeRepo) CountBySessionID(sessionID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.resumes[sessionID]), nil
}

func (r *fakeResumeRepo) DeleteBySessionID(sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resumes, sessionID)
	return nil
}

type fakeStore struct {
	mu      sync.Mutex
	blobs   map[string]map[string][]byte
	failPut bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{blobs: make(map[string]map[string][]byte)}
}

func (s *fakeStore) Put(_ context.Context, sessionID, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failPut {
		return fmt.Errorf("disk full")
	}
	if s.blobs[sessionID] == nil {
		s.blobs[sessionID] = make(map[string][]byte)
	}
	s.blobs[sessionID][name] = append([]byte(nil), data...)
	return nil
}

func (s *fakeStore) Get(_ context.Context, sessionID, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.blobs[sessionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	data, ok := session[name]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (s *fakeStore) List(_ context.Context, sessionID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.blobs[sessionID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	names := make([]string, 0, len(session))
	for name := range session {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *fakeStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, sessionID)
	return nil
}

func (s *fakeStore) dropSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, sessionID)
}

// stubExtractor treats every upload as plain text.
type stubExtractor struct{}

func (stubExtractor) Text(_ string, data []byte) (string, error) {
	return string(data), nil
}

func newTestService(pointer *fakePointerRepo, resumes *fakeResumeRepo, store *fakeStore) *ScreenService {
	return NewScreenService(
		pointer,
		resumes,
		store,
		stubExtractor{},
		textproc.NewDefaultSkillExtractor(),
		nil,
		nil,
		time.Hour,
	)
}

func screenInput(userID uint, sessionID string, files ...UploadFile) ScreenInput {
	return ScreenInput{
		UserID:         userID,
		SessionID:      sessionID,
		JobDescription: "Looking for a Python backend engineer with AWS experience",
		RequiredSkills: []string{"python", "aws", "docker"},
		Files:          files,
	}
}

func TestCreateSessionReplacesPrevious(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	store := newFakeStore()
	svc := newTestService(pointer, resumes, store)
	ctx := context.Background()

	first, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Screen(ctx, screenInput(1, first, UploadFile{
		Filename: "cv.txt",
		Data:     []byte("5 years Python and AWS Lambda development"),
	}))
	require.NoError(t, err)

	second, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Exactly one session is active and the old one's state is gone.
	current, err := pointer.GetByUserID(1)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, second, current.SessionID)

	_, err = store.List(ctx, first)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	old, err := resumes.ListBySessionID(first)
	require.NoError(t, err)
	assert.Empty(t, old)
}

func TestScreenRejectsForeignSession(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	store := newFakeStore()
	svc := newTestService(pointer, resumes, store)
	ctx := context.Background()

	active, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Screen(ctx, screenInput(1, "stale-or-foreign-id", UploadFile{
		Filename: "cv.txt",
		Data:     []byte("python"),
	}))
	assert.ErrorIs(t, err, ErrSessionMismatch)

	// Rejection leaves no state behind, in either session.
	list, err := resumes.ListBySessionID(active)
	require.NoError(t, err)
	assert.Empty(t, list)
	_, err = store.List(ctx, active)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScreenWithoutSession(t *testing.T) {
	svc := newTestService(newFakePointerRepo(), newFakeResumeRepo(), newFakeStore())

	_, err := svc.Screen(context.Background(), screenInput(7, "whatever", UploadFile{
		Filename: "cv.txt",
		Data:     []byte("python"),
	}))
	assert.ErrorIs(t, err, ErrNoActiveSession)
}

func TestScreenAppendOrder(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	svc := newTestService(pointer, resumes, newFakeStore())
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	_, err = svc.Screen(ctx, screenInput(1, sessionID, UploadFile{Filename: "a.txt", Data: []byte("python here")}))
	require.NoError(t, err)
	_, err = svc.Screen(ctx, screenInput(1, sessionID, UploadFile{Filename: "b.txt", Data: []byte("aws here")}))
	require.NoError(t, err)

	list, err := svc.GetResumes(ctx, 1, sessionID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a.txt", list[0].Filename)
	assert.Equal(t, "b.txt", list[1].Filename)
	assert.Equal(t, 0, list[0].Position)
	assert.Equal(t, 1, list[1].Position)
}

func TestScreenInputValidation(t *testing.T) {
	pointer := newFakePointerRepo()
	svc := newTestService(pointer, newFakeResumeRepo(), newFakeStore())
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	file := UploadFile{Filename: "cv.txt", Data: []byte("python")}

	cases := []ScreenInput{
		// No files.
		{UserID: 1, SessionID: sessionID, JobDescription: "jd", RequiredSkills: []string{"python"}},
		// Blank job description.
		{UserID: 1, SessionID: sessionID, JobDescription: "  ", RequiredSkills: []string{"python"}, Files: []UploadFile{file}},
		// Skill list collapses to nothing.
		{UserID: 1, SessionID: sessionID, JobDescription: "jd", RequiredSkills: []string{" ", ""}, Files: []UploadFile{file}},
		// Unsupported format.
		{UserID: 1, SessionID: sessionID, JobDescription: "jd", RequiredSkills: []string{"python"}, Files: []UploadFile{{Filename: "cv.exe", Data: []byte("x")}}},
	}
	for i, input := range cases {
		_, err := svc.Screen(ctx, input)
		assert.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}
}

func TestScreenBatchAbortReportsFiles(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	store := newFakeStore()
	svc := newTestService(pointer, resumes, store)
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	// First file lands, then the store starts failing.
	_, err = svc.Screen(ctx, screenInput(1, sessionID, UploadFile{Filename: "ok.txt", Data: []byte("python")}))
	require.NoError(t, err)
	store.failPut = true

	result, err := svc.Screen(ctx, screenInput(1, sessionID,
		UploadFile{Filename: "fails.txt", Data: []byte("aws")},
		UploadFile{Filename: "skipped.txt", Data: []byte("docker")},
	))
	require.ErrorIs(t, err, ErrBatchAborted)
	require.NotNil(t, result)
	assert.Empty(t, result.Resumes)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, "fails.txt", result.Failed[0].Filename)
	assert.Equal(t, "skipped.txt", result.Failed[1].Filename)

	// The resume persisted before the abort survives.
	store.failPut = false
	list, err := svc.GetResumes(ctx, 1, sessionID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ok.txt", list[0].Filename)
}

func TestScreenScoresResume(t *testing.T) {
	pointer := newFakePointerRepo()
	svc := newTestService(pointer, newFakeResumeRepo(), newFakeStore())
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	result, err := svc.Screen(ctx, screenInput(1, sessionID, UploadFile{
		Filename: "cv.txt",
		Data:     []byte("5 years Python and AWS Lambda development"),
	}))
	require.NoError(t, err)
	require.Len(t, result.Resumes, 1)

	resume := result.Resumes[0]
	assert.Equal(t, "cv.txt", resume.Filename)
	assert.Contains(t, resume.MatchedSkillList(), "python")
	assert.Contains(t, resume.MatchedSkillList(), "aws")
	assert.NotContains(t, resume.MatchedSkillList(), "docker")
	assert.GreaterOrEqual(t, resume.MatchScore, 40)
	assert.LessOrEqual(t, resume.MatchScore, 100)
	assert.Equal(t, "5 years Python and AWS Lambda development", resume.RawText)
}

func TestClearSessionIdempotent(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	store := newFakeStore()
	svc := newTestService(pointer, resumes, store)
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Screen(ctx, screenInput(1, sessionID, UploadFile{Filename: "cv.txt", Data: []byte("python")}))
	require.NoError(t, err)

	require.NoError(t, svc.ClearSession(ctx, 1))
	require.NoError(t, svc.ClearSession(ctx, 1))

	_, err = svc.Screen(ctx, screenInput(1, sessionID, UploadFile{Filename: "cv.txt", Data: []byte("python")}))
	assert.ErrorIs(t, err, ErrNoActiveSession)
	_, err = store.List(ctx, sessionID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestExportBundle(t *testing.T) {
	pointer := newFakePointerRepo()
	svc := newTestService(pointer, newFakeResumeRepo(), newFakeStore())
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	result, err := svc.Screen(ctx, screenInput(1, sessionID, UploadFile{
		Filename: "cv.txt",
		Data:     []byte("python aws"),
	}))
	require.NoError(t, err)
	storedName := result.Resumes[0].StoredName

	var buf bytes.Buffer
	require.NoError(t, svc.ExportBundle(ctx, 1, sessionID, &buf))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, storedName, zr.File[0].Name)

	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "python aws", string(content))
}

func TestExportBundleMissingBackingStore(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	store := newFakeStore()
	svc := newTestService(pointer, resumes, store)
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Screen(ctx, screenInput(1, sessionID, UploadFile{Filename: "cv.txt", Data: []byte("python")}))
	require.NoError(t, err)

	// Blobs vanish behind the pointer's back: a consistency fault, not
	// "no session".
	store.dropSession(sessionID)

	var buf bytes.Buffer
	err = svc.ExportBundle(ctx, 1, sessionID, &buf)
	assert.ErrorIs(t, err, ErrSessionStateMissing)
	assert.NotErrorIs(t, err, ErrNoActiveSession)
}

func TestReapExpired(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	store := newFakeStore()
	svc := newTestService(pointer, resumes, store)
	ctx := context.Background()

	oldSession, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)
	_, err = svc.Screen(ctx, screenInput(1, oldSession, UploadFile{Filename: "cv.txt", Data: []byte("python")}))
	require.NoError(t, err)
	pointer.backdate(1, 2*time.Hour)

	freshSession, err := svc.CreateSession(ctx, 2)
	require.NoError(t, err)

	reaped, err := svc.ReapExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, reaped)

	gone, err := pointer.GetByUserID(1)
	require.NoError(t, err)
	assert.Nil(t, gone)
	_, err = store.List(ctx, oldSession)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	kept, err := pointer.GetByUserID(2)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, freshSession, kept.SessionID)
}

func TestConcurrentScreenCallsDoNotDropResults(t *testing.T) {
	pointer := newFakePointerRepo()
	resumes := newFakeResumeRepo()
	svc := newTestService(pointer, resumes, newFakeStore())
	ctx := context.Background()

	sessionID, err := svc.CreateSession(ctx, 1)
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Screen(ctx, screenInput(1, sessionID, UploadFile{
				Filename: fmt.Sprintf("cv-%d.txt", i),
				Data:     []byte("python"),
			}))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}

	list, err := svc.GetResumes(ctx, 1, sessionID)
	require.NoError(t, err)
	require.Len(t, list, workers)
	positions := make(map[int]bool, workers)
	for _, r := range list {
		positions[r.Position] = true
	}
	assert.Len(t, positions, workers, "positions must be unique")
}

func TestCreateSessionRequiresUser(t *testing.T) {
	svc := newTestService(newFakePointerRepo(), newFakeResumeRepo(), newFakeStore())
	_, err := svc.CreateSession(context.Background(), 0)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}
