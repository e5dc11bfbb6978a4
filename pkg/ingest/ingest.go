// Package ingest imports wordlist corpora into the sqlite store.
package ingest

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/sonority/pkg/corpus"
	"github.com/japaniel/sonority/pkg/db"
	"github.com/japaniel/sonority/pkg/sonority"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
	// Processed returns how many jobs have finished.
	Processed() int64
}

// Importer writes doculects into the database.
type Importer struct {
	DB        *sql.DB
	BatchSize int
	// Logger receives resume and completion messages. nil means slog.Default().
	Logger *slog.Logger
	// OnProgress is called periodically with the number of imported doculects and the total.
	OnProgress func(current, total int)

	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewImporter creates an Importer with default batching and concurrency.
func NewImporter(conn *sql.DB) *Importer {
	return &Importer{
		DB:        conn,
		BatchSize: 50,
		Workers:   4,
	}
}

func (im *Importer) logger() *slog.Logger {
	if im.Logger != nil {
		return im.Logger
	}
	return slog.Default()
}

// processedDoculect is a doculect with the space separated phones of each word,
// indexed like its synsets and words.
type processedDoculect struct {
	Index    int
	Doculect *corpus.Doculect
	Phones   [][]string
}

func segmentDoculect(index int, d *corpus.Doculect) processedDoculect {
	phones := make([][]string, len(d.Synsets))
	for i, s := range d.Synsets {
		phones[i] = make([]string, len(s.Words))
		for j, w := range s.Words {
			phones[i][j] = strings.Join(sonority.Segment(w.Form), " ")
		}
	}
	return processedDoculect{Index: index, Doculect: d, Phones: phones}
}

func (im *Importer) write(corpusID int64, item processedDoculect, words *int64) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		d := item.Doculect
		docID, err := db.CreateOrGetDoculect(tx, corpusID, item.Index, d)
		if err != nil {
			return fmt.Errorf("failed to persist doculect %s: %w", d.Name, err)
		}
		for i, s := range d.Synsets {
			synID, err := db.CreateOrGetSynset(tx, docID, i, s.Meaning)
			if err != nil {
				return fmt.Errorf("failed to persist %s/%s: %w", d.Name, s.Meaning, err)
			}
			for j, w := range s.Words {
				if err := db.PutWord(tx, synID, j, w, item.Phones[i][j]); err != nil {
					return fmt.Errorf("failed to persist word %s: %w", w.Form, err)
				}
			}
		}
		// Checkpoint progress for this doculect
		if err := db.UpdateCorpusProgress(tx, corpusID, item.Index); err != nil {
			return fmt.Errorf("failed to save progress: %w", err)
		}
		atomic.AddInt64(words, int64(d.WordCount()))
		return nil
	}
}

// Import segments the doculects concurrently and stores them in order with
// batched transactions. Doculects up to the stored progress of the corpus
// are skipped, so an interrupted import resumes where it stopped. It
// returns the number of words written.
func (im *Importer) Import(ctx context.Context, corpusID int64, doculects []*corpus.Doculect) (int, error) {
	log := im.logger()
	lastProcessed, err := db.GetCorpusProgress(im.DB, corpusID)
	if err != nil {
		log.Warn("failed to retrieve progress", "corpus", corpusID, "err", err)
		lastProcessed = -1
	}
	if lastProcessed >= 0 {
		log.Info("resuming import", "corpus", corpusID, "skipping", lastProcessed+1)
	}

	total := len(doculects)
	startIdx := lastProcessed + 1
	if startIdx >= total {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	workers := max(im.Workers, 1)
	var wp WorkerPoolInterface
	if im.PoolFactory != nil {
		wp = im.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	resultCh := make(chan processedDoculect, workers*2)
	doneCh := make(chan error, 1)

	var words int64

	bw := NewBatchWriter(im.DB, im.BatchSize, 100*time.Millisecond)
	var (
		batchErr   error
		batchErrMu sync.Mutex
	)
	bw.OnError = func(e error) {
		batchErrMu.Lock()
		if batchErr == nil {
			batchErr = e
		}
		batchErrMu.Unlock()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wp.Start(ctx)

	// Consumer: write finished doculects in input order.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]processedDoculect)
		nextIdx := startIdx
		for res := range resultCh {
			buffer[res.Index] = res
			for {
				item, ok := buffer[nextIdx]
				if !ok {
					break
				}
				delete(buffer, nextIdx)
				if err := bw.Submit(im.write(corpusID, item, &words)); err != nil {
					// Signal producers to stop to prevent them from blocking on resultCh.
					cancel()
					doneCh <- err
					return
				}
				if im.OnProgress != nil && (nextIdx+1)%max(im.BatchSize, 1) == 0 {
					im.OnProgress(nextIdx+1, total)
				}
				nextIdx++
			}
		}
		if err := ctx.Err(); err != nil {
			doneCh <- err
			return
		}
		if nextIdx < total {
			doneCh <- fmt.Errorf("import stopped at doculect %d of %d", nextIdx, total)
			return
		}
		if im.OnProgress != nil {
			im.OnProgress(total, total)
		}
	}()

	var submitErr error
Loop:
	for i := startIdx; i < total; i++ {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		idx := i
		d := doculects[i]
		job := func(ctx context.Context) error {
			res := segmentDoculect(idx, d)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
			return nil
		}

		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, ctx.Err()) || errors.Is(err, ErrPoolClosed) {
				break Loop
			}
			submitErr = err
			cancel()
			break Loop
		}
	}

	// No worker sends after Close returns, so resultCh can be closed.
	wp.Close()
	close(resultCh)

	// Wait for the consumer to write everything or fail.
	consumerErr := <-doneCh
	if submitErr != nil {
		consumerErr = submitErr
	}

	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	batchErrMu.Lock()
	if batchErr != nil && consumerErr == nil {
		consumerErr = batchErr
	}
	batchErrMu.Unlock()

	n := int(atomic.LoadInt64(&words))
	if consumerErr == nil {
		log.Info("import finished", "corpus", corpusID, "doculects", total-startIdx, "segmented", wp.Processed(), "words", n)
	}
	return n, consumerErr
}

// ImportFile registers the corpus file by its content checksum and imports
// its doculects. It returns the corpus id and the number of words written.
func (im *Importer) ImportFile(ctx context.Context, path string, doculects []*corpus.Doculect) (int64, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("read corpus: %w", err)
	}
	sum := sha256.Sum256(raw)
	corpusID, err := db.CreateOrGetCorpus(im.DB, path, hex.EncodeToString(sum[:]))
	if err != nil {
		return 0, 0, err
	}
	n, err := im.Import(ctx, corpusID, doculects)
	return corpusID, n, err
}
