package bulkmailsrv_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/bulkmail/bulkmailsrv"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/fsx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/notifx"
	"github.com/Innovate-to-Impact/bootcamp-registration/pkg/sheetx"
)

type memMailer struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]bool
}

func (m *memMailer) SendTemplatedEmail(ctx context.Context, templateName string, data interface{}, message notifx.EmailMessage, opts ...notifx.Option) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := message.To[0]
	if m.fails[email] {
		return errors.New("smtp: mailbox unavailable")
	}
	m.sent = append(m.sent, email)
	return nil
}

type memOutcomes struct {
	mu      sync.Mutex
	records []bulkmail.OutcomeRecord
}

func (r *memOutcomes) Append(ctx context.Context, record bulkmail.OutcomeRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, record)
	return nil
}

func (r *memOutcomes) FindByStatus(ctx context.Context, status bulkmail.OutcomeStatus) ([]bulkmail.OutcomeRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []bulkmail.OutcomeRecord
	for _, rec := range r.records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

// memFS records writes; reads are unsupported.
type memFS struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFS() *memFS { return &memFS{files: map[string][]byte{}} }

func (f *memFS) ReadFile(ctx context.Context, p string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *memFS) ReadFileStream(ctx context.Context, p string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *memFS) Stat(ctx context.Context, p string) (fsx.FileInfo, error) {
	return fsx.FileInfo{}, errors.New("not implemented")
}

func (f *memFS) List(ctx context.Context, p string) ([]fsx.FileInfo, error) {
	return nil, errors.New("not implemented")
}

func (f *memFS) Exists(ctx context.Context, p string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.files[p]
	return ok, nil
}

func (f *memFS) WriteFile(ctx context.Context, p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[p] = data
	return nil
}

func (f *memFS) WriteFileStream(ctx context.Context, p string, r io.Reader) error {
	return errors.New("not implemented")
}

func (f *memFS) DeleteFile(ctx context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.files, p)
	return nil
}

func (f *memFS) Join(elems ...string) string { return path.Join(elems...) }

func (f *memFS) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

func newService(mailer *memMailer, outcomes *memOutcomes, files fsx.FileSystem) *bulkmailsrv.Service {
	tracker := bulkmail.NewTracker()
	broadcaster := bulkmail.NewBroadcaster()
	dispatcher := bulkmail.NewDispatcher(mailer, outcomes, bulkmail.NopGate{}, bulkmail.RetryPolicy{MaxAttempts: 1}, "")
	orch := bulkmail.NewOrchestrator(dispatcher, tracker, broadcaster)
	return bulkmailsrv.NewService(orch, outcomes, files)
}

func workbook(t *testing.T, rows []sheetx.Row) *bytes.Buffer {
	t.Helper()

	buf, err := sheetx.Encode("Recipients", nil, rows)
	if err != nil {
		t.Fatalf("encode workbook: %v", err)
	}
	return buf
}

func TestRunUploadBatchSkipsHeaderRow(t *testing.T) {
	mailer := &memMailer{fails: map[string]bool{}}
	outcomes := &memOutcomes{}
	files := newMemFS()
	svc := newService(mailer, outcomes, files)

	buf := workbook(t, []sheetx.Row{
		{"Name", "Email", "Code"},
		{"Ada Lovelace", "ada@example.com", "BC-001"},
		{"Grace Hopper", "grace@example.com", "BC-002"},
	})

	processed, err := svc.RunUploadBatch(context.Background(), "cohort.xlsx", buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed: got %d, want 2 (header skipped)", processed)
	}
	if len(mailer.sent) != 2 {
		t.Fatalf("sent: got %d, want 2", len(mailer.sent))
	}
}

func TestRunUploadBatchWithoutHeaderRow(t *testing.T) {
	mailer := &memMailer{fails: map[string]bool{}}
	outcomes := &memOutcomes{}
	svc := newService(mailer, outcomes, newMemFS())

	buf := workbook(t, []sheetx.Row{
		{"Ada Lovelace", "ada@example.com", "BC-001"},
	})

	processed, err := svc.RunUploadBatch(context.Background(), "cohort.xlsx", buf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed: got %d, want 1 (first row is data)", processed)
	}
}

func TestRunUploadBatchArchivesSheet(t *testing.T) {
	mailer := &memMailer{fails: map[string]bool{}}
	outcomes := &memOutcomes{}
	files := newMemFS()
	svc := newService(mailer, outcomes, files)

	buf := workbook(t, []sheetx.Row{{"Ada", "ada@example.com", "BC-001"}})
	if _, err := svc.RunUploadBatch(context.Background(), "cohort.xlsx", buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	if files.count() != 1 {
		t.Fatalf("archived files: got %d, want 1", files.count())
	}
}

func TestRunUploadBatchRejectsMalformedWorkbook(t *testing.T) {
	mailer := &memMailer{fails: map[string]bool{}}
	outcomes := &memOutcomes{}
	svc := newService(mailer, outcomes, newMemFS())

	_, err := svc.RunUploadBatch(context.Background(), "junk.xlsx", strings.NewReader("this is not a workbook"))
	if err == nil {
		t.Fatal("expected decode error for malformed upload")
	}
	if len(mailer.sent) != 0 {
		t.Fatalf("batch must not start on malformed upload, sent %d", len(mailer.sent))
	}
}

func TestRunFailedRetryBatchRedrivesFailures(t *testing.T) {
	mailer := &memMailer{fails: map[string]bool{"down@example.com": true}}
	outcomes := &memOutcomes{}
	svc := newService(mailer, outcomes, newMemFS())

	buf := workbook(t, []sheetx.Row{
		{"Ada", "ada@example.com", "BC-001"},
		{"Bob", "down@example.com", "BC-002"},
	})
	if _, err := svc.RunUploadBatch(context.Background(), "cohort.xlsx", buf); err != nil {
		t.Fatalf("upload run: %v", err)
	}

	failed, err := svc.FailedOutcomes(context.Background())
	if err != nil {
		t.Fatalf("failed outcomes: %v", err)
	}
	if len(failed) != 1 || failed[0].Email != "down@example.com" {
		t.Fatalf("failed outcomes: got %+v", failed)
	}

	// Mailbox recovers; the retry batch should deliver and append a fresh
	// sent record while keeping the original failure.
	mailer.fails["down@example.com"] = false

	processed, err := svc.RunFailedRetryBatch(context.Background())
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if processed != 1 {
		t.Fatalf("retry processed: got %d, want 1", processed)
	}

	sent, err := outcomes.FindByStatus(context.Background(), bulkmail.OutcomeSent)
	if err != nil {
		t.Fatalf("find sent: %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("sent records: got %d, want 2", len(sent))
	}

	stillFailed, err := outcomes.FindByStatus(context.Background(), bulkmail.OutcomeFailed)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(stillFailed) != 1 {
		t.Fatalf("failure log rewritten: got %d failed records, want the original 1", len(stillFailed))
	}
}

func TestRunFailedRetryBatchWithNoFailures(t *testing.T) {
	mailer := &memMailer{fails: map[string]bool{}}
	outcomes := &memOutcomes{}
	svc := newService(mailer, outcomes, newMemFS())

	start := time.Now()
	processed, err := svc.RunFailedRetryBatch(context.Background())
	if err != nil {
		t.Fatalf("retry run: %v", err)
	}
	if processed != 0 {
		t.Fatalf("processed: got %d, want 0", processed)
	}
	if time.Since(start) > time.Second {
		t.Fatal("empty retry batch should complete immediately")
	}
}
