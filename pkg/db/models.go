package db

import "time"

// Corpus is an imported wordlist file.
type Corpus struct {
	ID       int64
	Path     string
	Checksum string
	// LastProcessed is the position of the last fully imported doculect.
	LastProcessed int
	AddedAt       time.Time
}

// Run is one scoring run over a corpus.
type Run struct {
	ID        string
	CorpusID  int64
	Scales    int
	Options   string
	CreatedAt time.Time
}

// IndexRecord is one stored index value.
type IndexRecord struct {
	Doculect string
	Scale    int
	Value    float64
}
