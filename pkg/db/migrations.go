package db

// migrationsSQL is the full schema. Statements are separated by ";" and
// must be safe to run on an existing database.
const migrationsSQL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS corpora (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	path TEXT NOT NULL,
	checksum TEXT NOT NULL UNIQUE,
	last_processed_doculect INTEGER NOT NULL DEFAULT -1,
	added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS doculects (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	corpus_id INTEGER NOT NULL REFERENCES corpora(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	lon REAL,
	lat REAL,
	wals TEXT NOT NULL DEFAULT '',
	ethnologue TEXT NOT NULL DEFAULT '',
	glottolog TEXT NOT NULL DEFAULT '',
	wals_code TEXT NOT NULL DEFAULT '',
	iso TEXT NOT NULL DEFAULT '',
	population INTEGER NOT NULL DEFAULT 0,
	UNIQUE(corpus_id, name)
);

CREATE TABLE IF NOT EXISTS synsets (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	doculect_id INTEGER NOT NULL REFERENCES doculects(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	meaning TEXT NOT NULL,
	UNIQUE(doculect_id, meaning)
);

CREATE TABLE IF NOT EXISTS words (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	synset_id INTEGER NOT NULL REFERENCES synsets(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	form TEXT NOT NULL,
	loan INTEGER NOT NULL DEFAULT 0,
	phones TEXT NOT NULL DEFAULT '',
	UNIQUE(synset_id, position)
);

CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	corpus_id INTEGER REFERENCES corpora(id) ON DELETE SET NULL,
	scales INTEGER NOT NULL,
	options TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS indices (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	doculect TEXT NOT NULL,
	scale INTEGER NOT NULL,
	value REAL,
	PRIMARY KEY(run_id, doculect, scale)
);

CREATE INDEX IF NOT EXISTS idx_synsets_doculect ON synsets(doculect_id);
CREATE INDEX IF NOT EXISTS idx_words_synset ON words(synset_id);
`
