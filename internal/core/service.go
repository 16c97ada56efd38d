package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/datasweeper/internal/logging"
	"github.com/JonMunkholm/datasweeper/internal/metrics"
	"github.com/google/uuid"
)

// Options configures a Service. Zero values fall back to defaults.
type Options struct {
	PreviewRows  int
	ChartMaxRows int

	SessionTTL  time.Duration
	MaxSessions int

	MaxFiles    int   // per session
	MaxFileSize int64 // bytes

	MaxConcurrentRuns int
	RunMaxWait        time.Duration
	RunTimeout        time.Duration
}

// Service is the entry point used by the web and CLI layers. It owns the
// session store and runs the pipeline for each file.
type Service struct {
	pipeline *Pipeline
	sessions *SessionStore
	limiter  *RunLimiter

	maxFiles    int
	maxFileSize int64
	runTimeout  time.Duration
	now         func() time.Time
}

// NewService creates a Service.
func NewService(opts Options) *Service {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 2 * time.Minute
	}
	return &Service{
		pipeline:    NewPipeline(opts.PreviewRows, opts.ChartMaxRows),
		sessions:    NewSessionStore(opts.SessionTTL, opts.MaxSessions),
		limiter:     NewRunLimiter(opts.MaxConcurrentRuns, opts.RunMaxWait),
		maxFiles:    opts.MaxFiles,
		maxFileSize: opts.MaxFileSize,
		runTimeout:  opts.RunTimeout,
		now:         time.Now,
	}
}

// Pipeline returns the pipeline used for runs.
func (s *Service) Pipeline() *Pipeline {
	return s.pipeline
}

// LimiterStatus reports run slot usage.
func (s *Service) LimiterStatus() RunLimiterStatus {
	return s.limiter.Status()
}

// SessionCount returns the number of sessions held.
func (s *Service) SessionCount() int {
	return s.sessions.Len()
}

// NewSession creates an empty session.
func (s *Service) NewSession() (*Session, error) {
	sess, err := s.sessions.Create()
	if err != nil {
		return nil, err
	}
	metrics.SetActiveSessions(s.sessions.Len())
	return sess, nil
}

// Session returns a live session by id.
func (s *Service) Session(id string) (*Session, error) {
	return s.sessions.Get(id)
}

// StartJanitor sweeps expired sessions in the background until ctx is done.
func (s *Service) StartJanitor(ctx context.Context, interval time.Duration) {
	go s.sessions.RunJanitor(ctx, interval, metrics.SetActiveSessions)
}

// WaitForRuns blocks until no pipeline run is in progress or ctx is done.
func (s *Service) WaitForRuns(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// FileView is a snapshot of one file for rendering: its state, history, and
// the result of the latest run.
type FileView struct {
	ID      string
	Name    string
	Size    int64
	State   FileState
	History []HistoryEntry
	Result  *Result
}

func (sf *sessionFile) view() FileView {
	return FileView{
		ID:      sf.file.ID,
		Name:    sf.file.Name,
		Size:    sf.file.Size(),
		State:   sf.state.clone(),
		History: append([]HistoryEntry(nil), sf.history...),
		Result:  sf.result,
	}
}

// AddFiles adds uploaded files to the session and processes every file in
// it. Files with unsupported extensions are kept so their error is shown.
func (s *Service) AddFiles(ctx context.Context, sess *Session, files []UploadedFile) ([]FileView, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	for _, f := range files {
		if s.maxFileSize > 0 && f.Size() > s.maxFileSize {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrFileTooLarge, f.Name, f.Size(), s.maxFileSize)
		}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if s.maxFiles > 0 && len(sess.files)+len(files) > s.maxFiles {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManyFiles, s.maxFiles)
	}

	now := s.now()
	for _, f := range files {
		if f.ID == "" {
			f.ID = uuid.New().String()
		}
		sf := &sessionFile{file: f, state: DefaultFileState()}
		sf.record(now, "Uploaded")
		sess.files = append(sess.files, sf)

		format, _ := DetectFormat(f.Name)
		metrics.FileUploaded(string(format.Choice))
	}

	sessionLogger(ctx, sess).Info("files added",
		"count", len(files),
		"total", len(sess.files),
	)
	return s.runAllLocked(ctx, sess)
}

// Files processes every file in the session, reusing results for files
// whose state has not changed.
func (s *Service) Files(ctx context.Context, sess *Session) ([]FileView, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.runAllLocked(ctx, sess)
}

// File processes one file and returns its view.
func (s *Service) File(ctx context.Context, sess *Session, fileID string) (FileView, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sf, err := sess.file(fileID)
	if err != nil {
		return FileView{}, err
	}
	if err := s.runLocked(ctx, sf); err != nil {
		return FileView{}, err
	}
	return sf.view(), nil
}

// UpdateFile applies fn to a copy of the file's state and, if fn succeeds,
// stores it and re-runs the pipeline. A non-empty message is added to the
// file's history.
func (s *Service) UpdateFile(ctx context.Context, sess *Session, fileID string, fn func(*FileState) error, message string) (FileView, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sf, err := sess.file(fileID)
	if err != nil {
		return FileView{}, err
	}

	next := sf.state.clone()
	if err := fn(&next); err != nil {
		return FileView{}, err
	}
	sf.state = next
	sf.version++
	if message != "" {
		sf.record(s.now(), message)
	}

	if err := s.runLocked(ctx, sf); err != nil {
		return FileView{}, err
	}
	return sf.view(), nil
}

// Trigger records a clean action for a file. The clean checkbox must be on.
func (s *Service) Trigger(ctx context.Context, sess *Session, fileID string, action CleanAction) (FileView, error) {
	msg := map[CleanAction]string{
		ActionDedupe: "Duplicates removed!",
		ActionImpute: "Missing values filled!",
	}[action]

	view, err := s.UpdateFile(ctx, sess, fileID, func(st *FileState) error {
		if !st.Clean {
			return ErrCleanDisabled
		}
		return st.Trigger(action)
	}, msg)
	if err != nil {
		return FileView{}, err
	}
	metrics.CleanAction(string(action))
	return view, nil
}

// Download returns the converted bytes for a file. The file must have been
// converted since its last table-affecting change.
func (s *Service) Download(ctx context.Context, sess *Session, fileID string) (*Download, error) {
	view, err := s.File(ctx, sess, fileID)
	if err != nil {
		return nil, err
	}
	res := view.Result
	switch {
	case res.Err != nil:
		return nil, res.Err
	case !view.State.Convert:
		return nil, ErrNotConverted
	case res.ExportErr != nil:
		return nil, res.ExportErr
	case res.Download == nil:
		return nil, ErrNotConverted
	}
	metrics.Downloaded(string(view.State.Format))
	return res.Download, nil
}

// Chart returns chart data for a file with visualization on.
func (s *Service) Chart(ctx context.Context, sess *Session, fileID string) (*ChartData, error) {
	view, err := s.File(ctx, sess, fileID)
	if err != nil {
		return nil, err
	}
	res := view.Result
	switch {
	case res.Err != nil:
		return nil, res.Err
	case !view.State.Visualize:
		return nil, fmt.Errorf("%w for %s", ErrVisualizationOff, view.Name)
	case res.ChartErr != nil:
		return nil, res.ChartErr
	}
	return res.Chart, nil
}

// RemoveFile drops a file from the session.
func (s *Service) RemoveFile(ctx context.Context, sess *Session, fileID string) error {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := sess.removeFile(fileID); err != nil {
		return err
	}
	sessionLogger(ctx, sess).Info("file removed", "file_id", fileID)
	return nil
}

// sessionLogger returns a logger carrying sess's id once, whether or not ctx
// already holds it.
func sessionLogger(ctx context.Context, sess *Session) *slog.Logger {
	return logging.FromContext(logging.WithSessionID(ctx, sess.ID))
}

// runAllLocked processes every file in upload order. Callers hold sess.mu.
func (s *Service) runAllLocked(ctx context.Context, sess *Session) ([]FileView, error) {
	views := make([]FileView, 0, len(sess.files))
	for _, sf := range sess.files {
		if err := s.runLocked(ctx, sf); err != nil {
			return nil, err
		}
		views = append(views, sf.view())
	}
	return views, nil
}

// runLocked runs the pipeline for sf unless its cached result is current.
// The returned error is only for failures to run at all; per-file problems
// are reported on the Result.
func (s *Service) runLocked(ctx context.Context, sf *sessionFile) (err error) {
	if sf.result != nil && sf.resultVersion == sf.version {
		return nil
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyRuns) {
			metrics.RunRejected()
		}
		return err
	}
	defer s.limiter.Release()

	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in pipeline run",
				"file_id", sf.file.ID,
				"file", sf.file.Name,
				"panic", r,
			)
			sf.result = &Result{
				FileID:   sf.file.ID,
				FileName: sf.file.Name,
				Err:      fmt.Errorf("internal error processing %s", sf.file.Name),
			}
			sf.resultVersion = sf.version
			metrics.ObserveRun(metrics.OutcomeError, 0)
			err = nil
		}
	}()

	res := s.pipeline.Run(runCtx, sf.file, sf.state.clone())
	if runCtx.Err() != nil && ctx.Err() != nil {
		return ctx.Err()
	}

	outcome := metrics.OutcomeOK
	switch {
	case res.Unsupported():
		outcome = metrics.OutcomeUnsupported
	case res.Err != nil || res.ExportErr != nil:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveRun(outcome, res.Duration)

	sf.result = res
	sf.resultVersion = sf.version
	if isContextErr(res.Err) || isContextErr(res.ExportErr) {
		// A timed-out run is shown once and retried on the next request.
		sf.resultVersion = -1
	}
	return nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
