package db

import (
	"database/sql"
	"math"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/japaniel/sonority/pkg/corpus"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Ensure single connection to avoid separate in-memory DBs per connection.
	db.SetMaxOpenConns(1)
	if err := InitDB(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func english() *corpus.Doculect {
	return &corpus.Doculect{
		Name:       "ENGLISH",
		Coord:      &corpus.Coordinate{Lon: -1, Lat: 52},
		WALS:       "IE.GERMANIC",
		Ethnologue: "Indo-European,Germanic",
		ISO:        "eng",
		Population: 300000000,
		Synsets: []corpus.Synset{
			{Meaning: "I", Words: []corpus.Word{{Form: "Ei"}}},
			{Meaning: "person", Words: []corpus.Word{{Form: "pers3n"}, {Form: "pipol", Loan: true}}},
		},
	}
}

func storeDoculect(t *testing.T, db DBExecutor, corpusID int64, pos int, d *corpus.Doculect) int64 {
	t.Helper()
	id, err := CreateOrGetDoculect(db, corpusID, pos, d)
	if err != nil {
		t.Fatalf("doculect: %v", err)
	}
	for i, s := range d.Synsets {
		sid, err := CreateOrGetSynset(db, id, i, s.Meaning)
		if err != nil {
			t.Fatalf("synset: %v", err)
		}
		for j, w := range s.Words {
			if err := PutWord(db, sid, j, w, w.Form); err != nil {
				t.Fatalf("word: %v", err)
			}
		}
	}
	return id
}

func TestCreateOrGetCorpus(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id1, err := CreateOrGetCorpus(db, "listss.txt", "abc")
	if err != nil {
		t.Fatalf("create corpus: %v", err)
	}
	id2, err := CreateOrGetCorpus(db, "moved/listss.txt", "abc")
	if err != nil {
		t.Fatalf("get corpus: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected same id, got %d and %d", id1, id2)
	}
	if _, err := CreateOrGetCorpus(db, "x", " "); err == nil {
		t.Fatalf("expected error for empty checksum")
	}

	c, err := LatestCorpus(db)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if c.ID != id1 || c.Path != "listss.txt" || c.LastProcessed != -1 {
		t.Fatalf("unexpected corpus %+v", c)
	}
}

func TestCorpusProgress(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	id, _ := CreateOrGetCorpus(db, "listss.txt", "abc")
	if err := UpdateCorpusProgress(db, id, 7); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := GetCorpusProgress(db, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestDoculectRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cid, _ := CreateOrGetCorpus(db, "listss.txt", "abc")

	id1 := storeDoculect(t, db, cid, 0, english())
	// Storing again must not duplicate rows.
	id2 := storeDoculect(t, db, cid, 0, english())
	if id1 != id2 {
		t.Fatalf("expected same doculect id, got %d and %d", id1, id2)
	}
	storeDoculect(t, db, cid, 1, &corpus.Doculect{
		Name:    "NOWHERE",
		ISO:     "nwh",
		Synsets: []corpus.Synset{{Meaning: "I", Words: []corpus.Word{{Form: "naya"}}}},
	})

	docs, err := LoadDoculects(db, DoculectQuery{CorpusID: cid})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 doculects, got %d", len(docs))
	}
	en := docs[0]
	if en.Name != "ENGLISH" || en.Coord == nil || en.Coord.Lat != 52 || en.Population != 300000000 {
		t.Fatalf("unexpected header %+v", en)
	}
	if len(en.Synsets) != 2 || en.WordCount() != 3 {
		t.Fatalf("unexpected synsets %+v", en.Synsets)
	}
	if w := en.Synsets[1].Words[1]; w.Form != "pipol" || !w.Loan {
		t.Fatalf("unexpected loan word %+v", w)
	}
	if docs[1].Coord != nil {
		t.Fatalf("expected no coordinate for NOWHERE")
	}

	docs, err = LoadDoculects(db, DoculectQuery{Names: []string{"NOWHERE"}})
	if err != nil || len(docs) != 1 || docs[0].Name != "NOWHERE" {
		t.Fatalf("name filter: %v %v", docs, err)
	}
	docs, err = LoadDoculects(db, DoculectQuery{MinSynsets: 2})
	if err != nil || len(docs) != 1 || docs[0].Name != "ENGLISH" {
		t.Fatalf("synset filter: %v %v", docs, err)
	}

	phones, err := GetPhones(db, cid, "ENGLISH")
	if err != nil {
		t.Fatalf("phones: %v", err)
	}
	if len(phones) != 3 || phones["Ei"] != "Ei" {
		t.Fatalf("unexpected phones %v", phones)
	}
}

func TestRunIndices(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	cid, _ := CreateOrGetCorpus(db, "listss.txt", "abc")
	runID, err := CreateRun(db, cid, 2, "by-meaning")
	if err != nil {
		t.Fatalf("create run: %v", err)
	}
	if _, err := CreateRun(db, cid, 0, ""); err == nil {
		t.Fatalf("expected error for zero scales")
	}

	for _, r := range []IndexRecord{{"B", 0, 9.5}, {"A", 1, math.NaN()}, {"A", 0, 7}} {
		if err := SaveIndex(db, runID, r.Doculect, r.Scale, r.Value); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if err := SaveIndex(db, runID, "A", 0, 8); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if err := SaveIndex(db, "not-a-uuid", "A", 0, 8); err == nil {
		t.Fatalf("expected error for bad run id")
	}

	got, err := GetRunIndices(db, runID)
	if err != nil {
		t.Fatalf("indices: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	if got[0].Doculect != "A" || got[0].Scale != 0 || got[0].Value != 8 {
		t.Fatalf("unexpected first record %+v", got[0])
	}
	if !math.IsNaN(got[1].Value) {
		t.Fatalf("expected NaN for NULL value, got %v", got[1].Value)
	}

	run, err := GetRun(db, runID)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if run.CorpusID != cid || run.Scales != 2 || run.Options != "by-meaning" {
		t.Fatalf("unexpected run %+v", run)
	}
}

func TestCreateOrGetCorpusConcurrency(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	const n = 8
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		go func() {
			id, err := CreateOrGetCorpus(db, "listss.txt", "same")
			if err != nil {
				t.Errorf("create or get corpus: %v", err)
				ids <- 0
				return
			}
			ids <- id
		}()
	}
	var first int64
	for i := 0; i < n; i++ {
		id := <-ids
		if id == 0 {
			t.Fatalf("error in goroutine")
		}
		if i == 0 {
			first = id
		}
		if id != first {
			t.Fatalf("expected same id, got %d and %d", first, id)
		}
	}
	var cnt int
	if err := db.QueryRow(`SELECT COUNT(*) FROM corpora WHERE checksum = ?`, "same").Scan(&cnt); err != nil {
		t.Fatalf("count: %v", err)
	}
	if cnt != 1 {
		t.Fatalf("expected 1 corpus row, got %d", cnt)
	}
}
