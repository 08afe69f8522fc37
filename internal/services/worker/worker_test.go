package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pipeline"
)

// funcProcessor adapts a function to the Processor interface.
type funcProcessor func(ctx context.Context, up pipeline.Upload) pipeline.Outcome

func (f funcProcessor) Process(ctx context.Context, up pipeline.Upload) pipeline.Outcome {
	return f(ctx, up)
}

func succeed(_ context.Context, up pipeline.Upload) pipeline.Outcome {
	doc := models.NewDocument(up.FileName)
	doc.ID = "id-" + up.FileName
	return pipeline.Outcome{FileName: up.FileName, Status: pipeline.Succeeded, Record: doc}
}

func uploads(names ...string) []pipeline.Upload {
	out := make([]pipeline.Upload, 0, len(names))
	for _, n := range names {
		out = append(out, pipeline.NewUpload(n, []byte("%PDF-1.4")))
	}
	return out
}

func names(outs []pipeline.Outcome) []string {
	var got []string
	for _, o := range outs {
		got = append(got, o.FileName)
	}
	sort.Strings(got)
	return got
}

func TestRunProcessesEveryUpload(t *testing.T) {
	pool := NewPool(4, funcProcessor(succeed))
	in := []string{"a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "f.pdf", "g.pdf"}

	outs := pool.Run(context.Background(), uploads(in...))

	got := names(outs)
	if fmt.Sprint(got) != fmt.Sprint(in) {
		t.Errorf("processed %v, want %v", got, in)
	}
}

func TestRunReturnsCompletionOrder(t *testing.T) {
	fastDone := make(chan struct{})
	proc := funcProcessor(func(ctx context.Context, up pipeline.Upload) pipeline.Outcome {
		if up.FileName == "slow.pdf" {
			<-fastDone
			time.Sleep(50 * time.Millisecond)
		} else {
			defer close(fastDone)
		}
		return succeed(ctx, up)
	})

	// slow.pdf is submitted first but must come back last.
	outs := NewPool(2, proc).Run(context.Background(), uploads("slow.pdf", "fast.pdf"))

	var got []string
	for _, o := range outs {
		got = append(got, o.FileName)
	}
	if want := []string{"fast.pdf", "slow.pdf"}; fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("outcome order = %v, want %v", got, want)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	const workers = 3
	var active, peak int64

	proc := funcProcessor(func(ctx context.Context, up pipeline.Upload) pipeline.Outcome {
		n := atomic.AddInt64(&active, 1)
		for {
			old := atomic.LoadInt64(&peak)
			if n <= old || atomic.CompareAndSwapInt64(&peak, old, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&active, -1)
		return succeed(ctx, up)
	})

	pool := NewPool(workers, proc)
	pool.Run(context.Background(), uploads("1", "2", "3", "4", "5", "6", "7", "8", "9", "10"))

	if peak > workers {
		t.Errorf("peak concurrency %d exceeds pool size %d", peak, workers)
	}
	if peak < 2 {
		t.Errorf("expected files to run in parallel, peak was %d", peak)
	}
}

func TestRunRecoversPanics(t *testing.T) {
	proc := funcProcessor(func(ctx context.Context, up pipeline.Upload) pipeline.Outcome {
		if up.FileName == "boom.pdf" {
			panic("nil map write")
		}
		return succeed(ctx, up)
	})

	outs := NewPool(2, proc).Run(context.Background(), uploads("ok.pdf", "boom.pdf"))
	if len(outs) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outs))
	}
	for _, o := range outs {
		if o.FileName == "boom.pdf" && o.Status != pipeline.Failed {
			t.Errorf("panicking file should fail, got %s", o.Status)
		}
		if o.FileName == "ok.pdf" && o.Status != pipeline.Succeeded {
			t.Errorf("sibling should succeed, got %s", o.Status)
		}
	}
}

func TestBatchEmpty(t *testing.T) {
	_, err := NewPool(4, funcProcessor(succeed)).Batch(context.Background(), nil)
	if !errors.Is(err, ErrNoFilesUploaded) {
		t.Fatalf("expected ErrNoFilesUploaded, got %v", err)
	}
}

func TestBatchAllSucceed(t *testing.T) {
	resp, err := NewPool(4, funcProcessor(succeed)).Batch(context.Background(), uploads("a.pdf", "b.pdf"))
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if !resp.Success || len(resp.Results) != 2 {
		t.Errorf("expected success with 2 results, got %+v", resp)
	}
	if resp.Errors == nil || len(resp.Errors) != 0 {
		t.Errorf("errors must be an empty, non-nil slice: %#v", resp.Errors)
	}
	for _, doc := range resp.Results {
		if doc.ID != "" {
			t.Errorf("results must not expose the record id, got %q", doc.ID)
		}
	}
}

func TestBatchPartitions(t *testing.T) {
	proc := funcProcessor(func(ctx context.Context, up pipeline.Upload) pipeline.Outcome {
		switch up.FileName {
		case "bad.pdf":
			return pipeline.Outcome{FileName: up.FileName, Status: pipeline.Failed, Err: pipeline.ErrFileSave, Details: "disk full"}
		case "scan.pdf":
			doc := models.NewDocument(up.FileName)
			doc.Summary = models.SummaryErrorMessage
			return pipeline.Outcome{FileName: up.FileName, Status: pipeline.Degraded, Record: doc, Err: pdf.ErrUnreadablePDF, Details: "unreadable pdf"}
		default:
			return succeed(ctx, up)
		}
	})

	resp, err := NewPool(4, proc).Batch(context.Background(), uploads("good.pdf", "bad.pdf", "scan.pdf"))
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if resp.Success {
		t.Errorf("batch with errors must not be successful")
	}
	if len(resp.Results) != 1 || resp.Results[0].FileName != "good.pdf" {
		t.Errorf("results = %+v, want only good.pdf", resp.Results)
	}

	got := map[string]string{}
	for _, e := range resp.Errors {
		got[e.Error] = e.Details
	}
	want := map[string]string{
		"Failed to process bad.pdf":  "disk full",
		"Failed to process scan.pdf": "unreadable pdf",
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("errors = %v, want %v", got, want)
	}
}

// fakeSource fails for any file it has no text for.
type fakeSource map[string][]string

func (f fakeSource) Read(path string) (*pdf.Text, error) {
	pages, ok := f[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: no xref table", pdf.ErrUnreadablePDF)
	}
	return &pdf.Text{Pages: pages, PageCount: len(pages)}, nil
}

type memStore struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func (s *memStore) Put(_ context.Context, doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.FileName] = doc
	return nil
}

// TestBatchValidAndCorrupt runs the real pipeline: one readable file and one
// corrupt file give one result, one error, and two stored records.
func TestBatchValidAndCorrupt(t *testing.T) {
	src := fakeSource{"good.pdf": {"Graph Notes (Ada)", "Graphs are everywhere. Graphs have nodes."}}
	store := &memStore{docs: map[string]*models.Document{}}
	pipe := pipeline.New(pipeline.Options{UploadDir: t.TempDir()}, src, store)

	resp, err := NewPool(DefaultWorkers, pipe).Batch(context.Background(), uploads("good.pdf", "corrupt.pdf"))
	if err != nil {
		t.Fatalf("Batch failed: %v", err)
	}
	if resp.Success || len(resp.Results) != 1 || len(resp.Errors) != 1 {
		t.Fatalf("expected 1 result and 1 error, got %+v", resp)
	}
	if resp.Errors[0].Error != "Failed to process corrupt.pdf" {
		t.Errorf("error entry = %+v", resp.Errors[0])
	}
	if resp.Results[0].Title != "Graph Notes" || resp.Results[0].Authors != "Ada" {
		t.Errorf("result = %+v", resp.Results[0])
	}

	degraded, ok := store.docs["corrupt.pdf"]
	if !ok {
		t.Fatalf("degraded record should be stored")
	}
	if degraded.Summary != models.SummaryErrorMessage || degraded.Title != models.DefaultTitle {
		t.Errorf("degraded record = %+v", degraded)
	}
}

func TestNewPoolDefaults(t *testing.T) {
	if got := NewPool(0, funcProcessor(succeed)).WorkerCount(); got != DefaultWorkers {
		t.Errorf("WorkerCount() = %d, want %d", got, DefaultWorkers)
	}
}
