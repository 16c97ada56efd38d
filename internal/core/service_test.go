package core

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/JonMunkholm/datasweeper/internal/logging"
)

func newTestService(t *testing.T) (*Service, *Session) {
	t.Helper()
	svc := NewService(Options{MaxFiles: 3, MaxFileSize: 1 << 20})
	sess, err := svc.NewSession()
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return svc, sess
}

// addOne uploads a single file and returns its id.
func addOne(t *testing.T, svc *Service, sess *Session, name, data string) string {
	t.Helper()
	views, err := svc.AddFiles(context.Background(), sess, []UploadedFile{{Name: name, Data: []byte(data)}})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	return views[0].ID
}

func update(t *testing.T, svc *Service, sess *Session, id string, fn func(*FileState) error, msg string) FileView {
	t.Helper()
	view, err := svc.UpdateFile(context.Background(), sess, id, fn, msg)
	if err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	return view
}

func TestService_AddFiles(t *testing.T) {
	svc, sess := newTestService(t)

	views, err := svc.AddFiles(context.Background(), sess, []UploadedFile{
		{Name: "a.csv", Data: []byte("id,val\n1,10\n")},
		{Name: "b.txt", Data: []byte("hello")},
	})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}

	if views[0].ID == "" {
		t.Error("file id not assigned")
	}
	if views[0].Result.Err != nil {
		t.Errorf("a.csv: %v", views[0].Result.Err)
	}
	if !views[1].Result.Unsupported() {
		t.Error("b.txt not kept as an unsupported file")
	}
	if got := views[0].History[0].Message; got != "Uploaded" {
		t.Errorf("first history entry = %q, want Uploaded", got)
	}
	if views[0].State.Format != CSV {
		t.Errorf("default format = %q, want csv", views[0].State.Format)
	}
}

func TestService_AddFilesLimits(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()

	four := make([]UploadedFile, 4)
	for i := range four {
		four[i] = UploadedFile{Name: "x.csv", Data: []byte("a\n1\n")}
	}

	tests := []struct {
		name  string
		files []UploadedFile
		want  error
	}{
		{"no files", nil, ErrNoFiles},
		{"too large", []UploadedFile{{Name: "big.csv", Data: make([]byte, 2<<20)}}, ErrFileTooLarge},
		{"too many", four, ErrTooManyFiles},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AddFiles(ctx, sess, tt.files); !errors.Is(err, tt.want) {
				t.Errorf("AddFiles error = %v, want %v", err, tt.want)
			}
		})
	}
	if sess.Len() != 0 {
		t.Errorf("session holds %d files after rejected uploads", sess.Len())
	}
}

func TestService_FullFlow(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()
	id := addOne(t, svc, sess, "a.csv", "id,val\n1,10\n1,10\n2,\n")

	if _, err := svc.Trigger(ctx, sess, id, ActionDedupe); !errors.Is(err, ErrCleanDisabled) {
		t.Fatalf("Trigger with clean off = %v, want ErrCleanDisabled", err)
	}

	update(t, svc, sess, id, func(st *FileState) error { st.SetClean(true); return nil }, "Clean data enabled")

	if _, err := svc.Trigger(ctx, sess, id, ActionDedupe); err != nil {
		t.Fatalf("Trigger(dedupe): %v", err)
	}
	view, err := svc.Trigger(ctx, sess, id, ActionImpute)
	if err != nil {
		t.Fatalf("Trigger(impute): %v", err)
	}
	want := [][]string{{"id", "val"}, {"1", "10"}, {"2", "10"}}
	if got := view.Result.Table.Records(); !reflect.DeepEqual(got, want) {
		t.Errorf("Records() = %q, want %q", got, want)
	}

	if _, err := svc.Download(ctx, sess, id); !errors.Is(err, ErrNotConverted) {
		t.Fatalf("Download before convert = %v, want ErrNotConverted", err)
	}

	update(t, svc, sess, id, func(st *FileState) error { return st.RequestConversion(CSV) }, "")

	dl, err := svc.Download(ctx, sess, id)
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if dl.FileName != "a.csv" || string(dl.Data) != "id,val\n1,10\n2,10\n" {
		t.Errorf("download = %s %q", dl.FileName, dl.Data)
	}

	// A table-affecting change hides the download until converted again.
	update(t, svc, sess, id, func(st *FileState) error { st.SelectColumns([]string{"val"}); return nil }, "")
	if _, err := svc.Download(ctx, sess, id); !errors.Is(err, ErrNotConverted) {
		t.Errorf("Download after column change = %v, want ErrNotConverted", err)
	}

	view, err = svc.File(ctx, sess, id)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	messages := make([]string, len(view.History))
	for i, h := range view.History {
		messages[i] = h.Message
	}
	wantHistory := []string{"Uploaded", "Clean data enabled", "Duplicates removed!", "Missing values filled!"}
	if !reflect.DeepEqual(messages, wantHistory) {
		t.Errorf("history = %q, want %q", messages, wantHistory)
	}
}

func TestService_Chart(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()
	id := addOne(t, svc, sess, "a.csv", "a,b\n1,2\n")

	if _, err := svc.Chart(ctx, sess, id); !errors.Is(err, ErrVisualizationOff) {
		t.Fatalf("Chart with visualization off = %v, want ErrVisualizationOff", err)
	}

	update(t, svc, sess, id, func(st *FileState) error { st.SetVisualize(true); return nil }, "")
	data, err := svc.Chart(ctx, sess, id)
	if err != nil {
		t.Fatalf("Chart: %v", err)
	}
	if len(data.Series) != 2 {
		t.Errorf("got %d series, want 2", len(data.Series))
	}
}

func TestService_ResultCachedUntilStateChanges(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()

	views, err := svc.AddFiles(ctx, sess, []UploadedFile{{Name: "a.csv", Data: []byte("a\n1\n")}})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}
	first := views[0].Result

	again, err := svc.File(ctx, sess, views[0].ID)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if again.Result != first {
		t.Error("unchanged state re-ran the pipeline")
	}

	changed := update(t, svc, sess, views[0].ID, func(st *FileState) error { st.SetVisualize(true); return nil }, "")
	if changed.Result == first {
		t.Error("state change reused the cached result")
	}
}

func TestService_RemoveFile(t *testing.T) {
	svc, sess := newTestService(t)
	ctx := context.Background()

	views, err := svc.AddFiles(ctx, sess, []UploadedFile{
		{Name: "a.csv", Data: []byte("a\n1\n")},
		{Name: "b.csv", Data: []byte("b\n2\n")},
	})
	if err != nil {
		t.Fatalf("AddFiles: %v", err)
	}

	if err := svc.RemoveFile(ctx, sess, views[0].ID); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	if got := sess.FileIDs(); !reflect.DeepEqual(got, []string{views[1].ID}) {
		t.Errorf("FileIDs() = %v, want [%s]", got, views[1].ID)
	}
	if err := svc.RemoveFile(ctx, sess, views[0].ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("second RemoveFile = %v, want ErrFileNotFound", err)
	}
	if _, err := svc.File(ctx, sess, views[0].ID); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("File after remove = %v, want ErrFileNotFound", err)
	}
}

func TestService_LogsSessionIDOnce(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New("info", "text", &buf))
	defer slog.SetDefault(prev)

	svc, sess := newTestService(t)
	contexts := map[string]context.Context{
		"bare":         context.Background(),
		"with session": logging.WithSessionID(context.Background(), sess.ID),
	}

	for name, ctx := range contexts {
		t.Run(name, func(t *testing.T) {
			buf.Reset()
			views, err := svc.AddFiles(ctx, sess, []UploadedFile{{Name: "a.csv", Data: []byte("a\n1\n")}})
			if err != nil {
				t.Fatalf("AddFiles: %v", err)
			}
			if err := svc.RemoveFile(ctx, sess, views[len(views)-1].ID); err != nil {
				t.Fatalf("RemoveFile: %v", err)
			}

			matched := 0
			for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
				if !strings.Contains(line, "files added") && !strings.Contains(line, "file removed") {
					continue
				}
				matched++
				if n := strings.Count(line, "session_id="); n != 1 {
					t.Errorf("session_id appears %d times in %q", n, line)
				}
			}
			if matched != 2 {
				t.Errorf("found %d session log lines, want 2:\n%s", matched, buf.String())
			}
		})
	}
}
