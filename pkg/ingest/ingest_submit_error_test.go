package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/sonority/pkg/db"
)

// failingPool always returns an error on Submit to simulate producer error.
type failingPool struct{}

func (f *failingPool) Start(ctx context.Context) {}
func (f *failingPool) Submit(job Job) error      { return errors.New("submit failed") }
func (f *failingPool) SubmitCtx(ctx context.Context, job Job) error {
	return errors.New("submit failed")
}
func (f *failingPool) Close()           {}
func (f *failingPool) Processed() int64 { return 0 }

func TestImportHandlesSubmitError(t *testing.T) {
	conn := setupDB(t)
	defer conn.Close()

	corpusID, err := db.CreateOrGetCorpus(conn, "listss.txt", "submit-error")
	if err != nil {
		t.Fatal(err)
	}

	im := NewImporter(conn)
	// Inject failing pool so first Submit() returns an error
	im.PoolFactory = func(workers, queue int) WorkerPoolInterface { return &failingPool{} }

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = im.Import(ctx, corpusID, testDoculects(10))
	if err == nil || err.Error() != "submit failed" {
		t.Fatalf("expected submit error, got %v", err)
	}
}
