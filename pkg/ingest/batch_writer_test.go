package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/japaniel/sonority/pkg/db"
)

func openStore(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func countCorpora(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	if err := conn.QueryRow("SELECT COUNT(*) FROM corpora").Scan(&n); err != nil {
		t.Fatalf("count corpora: %v", err)
	}
	return n
}

func registerCorpus(name string) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := db.CreateOrGetCorpus(tx, name+".txt", "sum-"+name)
		return err
	}
}

func TestBatchWriterCommitsBatch(t *testing.T) {
	conn := openStore(t)
	bw := NewBatchWriter(conn, 2, 0)
	var (
		mu   sync.Mutex
		errs []error
	)
	bw.OnError = func(e error) {
		mu.Lock()
		errs = append(errs, e)
		mu.Unlock()
	}

	for _, name := range []string{"asjp17", "asjp19"} {
		if err := bw.Submit(registerCorpus(name)); err != nil {
			t.Fatalf("submit %s: %v", name, err)
		}
	}

	closed := make(chan error, 1)
	go func() { closed <- bw.Close() }()
	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("close failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for batch commit")
	}

	if n := countCorpora(t, conn); n != 2 {
		t.Fatalf("expected 2 corpora, got %d", n)
	}
	if st := bw.Stats(); st.Batches != 1 || st.Writes != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestBatchWriterRollsBackFailedBatch(t *testing.T) {
	conn := openStore(t)
	bw := NewBatchWriter(conn, 2, 0)
	errCh := make(chan error, 1)
	bw.OnError = func(e error) { errCh <- e }

	// The second write fails, so the first must not persist.
	bw.Submit(registerCorpus("kept-only-if-committed"))
	bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		return fmt.Errorf("synset without doculect")
	})

	err := bw.Close()
	if err == nil || !strings.Contains(err.Error(), "synset without doculect") {
		t.Fatalf("expected Close to return the batch error, got %v", err)
	}
	select {
	case e := <-errCh:
		if e != err {
			t.Fatalf("OnError got %v, Close returned %v", e, err)
		}
	default:
		t.Fatal("expected OnError to be called")
	}
	if n := countCorpora(t, conn); n != 0 {
		t.Fatalf("expected rollback, found %d corpora", n)
	}
	if st := bw.Stats(); st.Batches != 0 {
		t.Fatalf("failed batch counted: %+v", st)
	}
}

func TestBatchWriterFlushesBySize(t *testing.T) {
	bw := NewBatchWriter(nil, 5, 0)
	var mu sync.Mutex
	called := 0
	for i := 0; i < 12; i++ {
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
			mu.Lock()
			called++
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if called != 12 {
		t.Fatalf("expected 12 calls, got %d", called)
	}
}

func TestBatchWriterFlushesOnInterval(t *testing.T) {
	bw := NewBatchWriter(nil, 10, 50*time.Millisecond)
	var mu sync.Mutex
	called := 0
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		mu.Lock()
		called++
		mu.Unlock()
		return nil
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// wait for flush interval
	time.Sleep(100 * time.Millisecond)
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if called != 1 {
		t.Fatalf("expected 1 call, got %d", called)
	}
}

func TestBatchWriterDropsBatchOnCancel(t *testing.T) {
	// Batch size 1: every Submit hands a batch to the committer.
	bw := NewBatchWriter(nil, 1, 0)
	defer bw.Close()
	errCh := make(chan error, 1)
	bw.OnError = func(e error) {
		errCh <- e
	}

	blocker := make(chan struct{})

	// The committer blocks on the first batch.
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error {
		<-blocker
		return nil
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	// Two more batches fill commitCh.
	for i := 0; i < 2; i++ {
		if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	bw.cancel()

	// commitCh is full and the writer is canceled, so this batch is dropped.
	if err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil }); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	close(blocker)

	select {
	case e := <-errCh:
		if e == nil || !strings.Contains(e.Error(), "dropping batch") {
			t.Fatalf("unexpected OnError value: %v", e)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected OnError to be called when batch dropped")
	}
}

func TestBatchWriterSubmitAfterClose(t *testing.T) {
	bw := NewBatchWriter(nil, 2, 0)
	if err := bw.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	err := bw.Submit(func(ctx context.Context, tx *sql.Tx) error { return nil })
	if err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed, got %v", err)
	}
	if err := bw.Close(); err != ErrBatchWriterClosed {
		t.Fatalf("expected ErrBatchWriterClosed on second close, got %v", err)
	}
}
