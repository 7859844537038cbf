package app

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"resume-screener/internal/extract"
	"resume-screener/internal/matching"
	"resume-screener/internal/model"
	"resume-screener/internal/platform/rabbitmq"
	"resume-screener/internal/storage"
	"resume-screener/internal/textproc"
)

var (
	// ErrNoActiveSession and ErrSessionMismatch are both authorization-style
	// failures: the caller does not hold the claimed session. They are kept
	// distinct so a thin client can tell "create a session" from "stale id".
	ErrNoActiveSession = errors.New("no active session")
	ErrSessionMismatch = errors.New("session id does not match the active session")

	// ErrSessionStateMissing means the pointer exists but the backing
	// storage does not. It is surfaced, never healed by auto-creating.
	ErrSessionStateMissing = errors.New("session state missing")

	// ErrBatchAborted marks a screen call that stopped mid-batch on a
	// storage or extraction failure. The returned result still reports
	// which files succeeded before the abort.
	ErrBatchAborted = errors.New("screening batch aborted")
)

// SessionPointerRepo persists the single active-session pointer per user.
type SessionPointerRepo interface {
	Create(session *model.ActiveSession) error
	GetByUserID(userID uint) (*model.ActiveSession, error)
	DeleteByUserID(userID uint) error
	ListCreatedBefore(cutoff time.Time) ([]model.ActiveSession, error)
}

// ResumeRepo persists scored resume records.
type ResumeRepo interface {
	Create(resume *model.Resume) error
	ListBySessionID(sessionID string) ([]model.Resume, error)
	CountBySessionID(sessionID string) (int, error)
	DeleteBySessionID(sessionID string) error
}

// UsageEventPublisher hands off usage accounting to the async worker.
type UsageEventPublisher interface {
	Publish(ctx context.Context, event rabbitmq.UsageEvent) error
}

// ResumeListCache fronts the dashboard read path.
type ResumeListCache interface {
	GetResumes(ctx context.Context, sessionID string) ([]model.Resume, bool, error)
	SetResumes(ctx context.Context, sessionID string, resumes []model.Resume) error
	DeleteResumes(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// UploadFile is one uploaded resume: original filename plus raw bytes.
type UploadFile struct {
	Filename string
	Data     []byte
}

// FileFailure reports one file a screen call could not process.
type FileFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// ScreenResult carries the resumes created by one screen call and, when the
// batch aborted, the files that did not make it.
type ScreenResult struct {
	Resumes []model.Resume `json:"resumes"`
	Failed  []FileFailure  `json:"failed,omitempty"`
}

type ScreenInput struct {
	UserID         uint
	SessionID      string
	JobDescription string
	RequiredSkills []string
	Files          []UploadFile
}

// ScreenService owns the screening session lifecycle: one active session per
// user, resume ingestion and scoring, export and teardown. All mutations of
// a user's session state are serialized behind a per-user lock, so a
// concurrent reader never observes a half-replaced session.
type ScreenService struct {
	sessionRepo SessionPointerRepo
	resumeRepo  ResumeRepo
	store       storage.Store
	extractor   extract.TextExtractor
	skills      *textproc.SkillExtractor
	publisher   UsageEventPublisher
	cache       ResumeListCache
	retention   time.Duration

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewScreenService(
	sessionRepo SessionPointerRepo,
	resumeRepo ResumeRepo,
	store storage.Store,
	extractor extract.TextExtractor,
	skills *textproc.SkillExtractor,
	publisher UsageEventPublisher,
	cache ResumeListCache,
	retention time.Duration,
) *ScreenService {
	if retention <= 0 {
		retention = time.Hour
	}
	if skills == nil {
		skills = textproc.NewDefaultSkillExtractor()
	}
	return &ScreenService{
		sessionRepo: sessionRepo,
		resumeRepo:  resumeRepo,
		store:       store,
		extractor:   extractor,
		skills:      skills,
		publisher:   publisher,
		cache:       cache,
		retention:   retention,
		locks:       make(map[uint]*sync.Mutex),
	}
}

// userLock returns the mutex serializing all session operations of one user.
func (s *ScreenService) userLock(userID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	return lock
}

// CreateSession replaces whatever session the user had with a fresh empty
// one. The eviction of the old session (blobs, rows, pointer) and the
// insertion of the new pointer happen under the user lock, so callers see
// either the old complete session or the new empty one, nothing in between.
func (s *ScreenService) CreateSession(ctx context.Context, userID uint) (string, error) {
	if userID == 0 {
		return "", ErrInvalidInput
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.sessionRepo.GetByUserID(userID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := s.teardownLocked(ctx, userID, existing.SessionID); err != nil {
			return "", err
		}
	}

	session := &model.ActiveSession{
		UserID:    userID,
		SessionID: uuid.NewString(),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return "", err
	}
	return session.SessionID, nil
}

// Screen validates the claimed session, then scores and persists each file
// in submission order. Input problems reject the whole batch before any
// state changes. A storage or extraction failure mid-batch aborts the
// remaining files; resumes persisted before the abort stay persisted and are
// reported alongside the failures.
func (s *ScreenService) Screen(ctx context.Context, input ScreenInput) (*ScreenResult, error) {
	if input.UserID == 0 || strings.TrimSpace(input.SessionID) == "" {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(input.JobDescription) == "" {
		return nil, ErrInvalidInput
	}
	required := trimNonBlank(input.RequiredSkills)
	if len(required) == 0 {
		return nil, ErrInvalidInput
	}
	if len(input.Files) == 0 {
		return nil, ErrInvalidInput
	}
	for _, f := range input.Files {
		if strings.TrimSpace(f.Filename) == "" || !supportedExt(f.Filename) {
			return nil, ErrInvalidInput
		}
	}

	lock := s.userLock(input.UserID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.validateSessionLocked(input.UserID, input.SessionID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.MarkDirty(ctx, input.SessionID)
		_ = s.cache.DeleteResumes(ctx, input.SessionID)
	}

	position, err := s.resumeRepo.CountBySessionID(input.SessionID)
	if err != nil {
		return nil, err
	}

	result := &ScreenResult{}
	for i, file := range input.Files {
		resume, err := s.screenOne(ctx, input, file, position+i)
		if err != nil {
			// Abort the rest of the batch, reporting what succeeded.
			result.Failed = append(result.Failed, FileFailure{
				Filename: file.Filename,
				Reason:   err.Error(),
			})
			for _, rest := range input.Files[i+1:] {
				result.Failed = append(result.Failed, FileFailure{
					Filename: rest.Filename,
					Reason:   "not processed: batch aborted",
				})
			}
			return result, fmt.Errorf("%w: %v", ErrBatchAborted, err)
		}
		result.Resumes = append(result.Resumes, *resume)
	}

	if s.publisher != nil {
		event := rabbitmq.UsageEvent{
			UserID:     input.UserID,
			Resumes:    len(result.Resumes),
			OccurredAt: time.Now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Printf("publish usage event failed: %v", err)
		}
	}

	return result, nil
}

func (s *ScreenService) screenOne(ctx context.Context, input ScreenInput, file UploadFile, position int) (*model.Resume, error) {
	resumeID := uuid.NewString()
	// Prefixing the id keeps stored names collision-free even when two
	// uploads share an original filename.
	storedName := resumeID + "_" + filepath.Base(file.Filename)

	if err := s.store.Put(ctx, input.SessionID, storedName, file.Data); err != nil {
		return nil, err
	}

	rawText, err := s.extractor.Text(file.Filename, file.Data)
	if err != nil {
		return nil, err
	}

	extracted := s.skills.Extract(rawText)
	score := matching.Score(matching.ScoreRequest{
		JobDescription:  input.JobDescription,
		RequiredSkills:  trimNonBlank(input.RequiredSkills),
		ResumeText:      rawText,
		ExtractedSkills: extracted,
	})

	resume := &model.Resume{
		ID:         resumeID,
		SessionID:  input.SessionID,
		Position:   position,
		Filename:   filepath.Base(file.Filename),
		StoredName: storedName,
		RawText:    rawText,
		MatchScore: score.FinalScore,
	}
	resume.SetMatchedSkills(score.MatchedSkills)

	if err := s.resumeRepo.Create(resume); err != nil {
		return nil, err
	}
	return resume, nil
}

// GetResumes returns the session's resumes in insertion order.
func (s *ScreenService) GetResumes(ctx context.Context, userID uint, sessionID string) ([]model.Resume, error) {
	if userID == 0 || strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.validateSessionLocked(userID, sessionID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		dirty, err := s.cache.IsDirty(ctx, sessionID)
		if err == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetResumes(ctx, sessionID); cacheErr == nil && hit {
				return cached, nil
			}
		}
	}

	resumes, err := s.resumeRepo.ListBySessionID(sessionID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			_ = s.cache.SetResumes(ctx, sessionID, resumes)
		}
	}
	return resumes, nil
}

// ExportBundle writes a zip of all stored resume files to w. Session
// metadata never enters the archive; it lives in the database, not the blob
// store. A pointer with resumes but no backing blobs is a consistency fault.
func (s *ScreenService) ExportBundle(ctx context.Context, userID uint, sessionID string, w io.Writer) error {
	if userID == 0 || strings.TrimSpace(sessionID) == "" {
		return ErrInvalidInput
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if err := s.validateSessionLocked(userID, sessionID); err != nil {
		return err
	}

	names, err := s.store.List(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		count, countErr := s.resumeRepo.CountBySessionID(sessionID)
		if countErr != nil {
			return countErr
		}
		if count > 0 {
			return ErrSessionStateMissing
		}
		names = nil
	} else if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for _, name := range names {
		data, err := s.store.Get(ctx, sessionID, name)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("read blob %q failed: %w", name, err)
		}
		entry, err := zw.Create(name)
		if err != nil {
			_ = zw.Close()
			return fmt.Errorf("create zip entry failed: %w", err)
		}
		if _, err := entry.Write(data); err != nil {
			_ = zw.Close()
			return fmt.Errorf("write zip entry failed: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalize zip failed: %w", err)
	}
	return nil
}

// ClearSession tears down the user's active session. Clearing when no
// session is active is a no-op, so logout can always call it.
func (s *ScreenService) ClearSession(ctx context.Context, userID uint) error {
	if userID == 0 {
		return ErrInvalidInput
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.sessionRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}
	return s.teardownLocked(ctx, userID, existing.SessionID)
}

// ReapExpired destroys sessions older than the retention window. Each
// teardown re-checks the pointer under the owner's lock, so a sweep never
// deletes a session mid-screen or one that was replaced after listing.
func (s *ScreenService) ReapExpired(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-s.retention)
	expired, err := s.sessionRepo.ListCreatedBefore(cutoff)
	if err != nil {
		return 0, err
	}

	reaped := 0
	for _, session := range expired {
		lock := s.userLock(session.UserID)
		lock.Lock()
		current, err := s.sessionRepo.GetByUserID(session.UserID)
		if err != nil {
			lock.Unlock()
			return reaped, err
		}
		if current == nil || current.SessionID != session.SessionID || current.CreatedAt.After(cutoff) {
			lock.Unlock()
			continue
		}
		if err := s.teardownLocked(ctx, session.UserID, session.SessionID); err != nil {
			lock.Unlock()
			return reaped, err
		}
		reaped++
		lock.Unlock()
	}
	return reaped, nil
}

// Retention reports the configured session retention window.
func (s *ScreenService) Retention() time.Duration {
	return s.retention
}

// teardownLocked removes blobs first, then rows, then the pointer. Callers
// must hold the user lock. If blob deletion fails the pointer survives, so
// the session stays discoverable and the teardown can be retried.
func (s *ScreenService) teardownLocked(ctx context.Context, userID uint, sessionID string) error {
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.resumeRepo.DeleteBySessionID(sessionID); err != nil {
		return err
	}
	if err := s.sessionRepo.DeleteByUserID(userID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.DeleteResumes(ctx, sessionID)
	}
	return nil
}

func (s *ScreenService) validateSessionLocked(userID uint, sessionID string) error {
	current, err := s.sessionRepo.GetByUserID(userID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNoActiveSession
	}
	if current.SessionID != sessionID {
		return ErrSessionMismatch
	}
	return nil
}

func trimNonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func supportedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".txt":
		return true
	default:
		return false
	}
}
