package db

import (
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/japaniel/sonority/pkg/corpus"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetCorpus returns the id of the corpus with this checksum,
// inserting it when missing.
func CreateOrGetCorpus(db DBExecutor, path, checksum string) (int64, error) {
	checksum = strings.TrimSpace(checksum)
	if checksum == "" {
		return 0, fmt.Errorf("checksum must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(`SELECT id FROM corpora WHERE checksum = ?`, checksum).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}

		res, err := db.Exec(`INSERT INTO corpora (path, checksum) VALUES (?, ?)`, path, checksum)
		if err != nil {
			// Another writer inserted the same corpus; retry the SELECT.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get corpus after %d retries", maxRetries)
}

// GetCorpus returns the corpus with the given id.
func GetCorpus(db DBExecutor, id int64) (Corpus, error) {
	var c Corpus
	err := db.QueryRow(`SELECT id, path, checksum, last_processed_doculect, added_at FROM corpora WHERE id = ?`, id).
		Scan(&c.ID, &c.Path, &c.Checksum, &c.LastProcessed, &c.AddedAt)
	return c, err
}

// LatestCorpus returns the most recently added corpus.
func LatestCorpus(db DBExecutor) (Corpus, error) {
	var id int64
	if err := db.QueryRow(`SELECT id FROM corpora ORDER BY id DESC LIMIT 1`).Scan(&id); err != nil {
		return Corpus{}, err
	}
	return GetCorpus(db, id)
}

// GetCorpusProgress returns the position of the last imported doculect, -1
// when none is.
func GetCorpusProgress(db DBExecutor, corpusID int64) (int, error) {
	var index int
	err := db.QueryRow("SELECT last_processed_doculect FROM corpora WHERE id = ?", corpusID).Scan(&index)
	if err != nil {
		return 0, err
	}
	return index, nil
}

// UpdateCorpusProgress records the last imported doculect position.
func UpdateCorpusProgress(db DBExecutor, corpusID int64, index int) error {
	_, err := db.Exec("UPDATE corpora SET last_processed_doculect = ? WHERE id = ?", index, corpusID)
	return err
}

// nullableFloat returns nil for NaN.
func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

// CreateOrGetDoculect upserts the doculect header and returns its id.
func CreateOrGetDoculect(db DBExecutor, corpusID int64, position int, d *corpus.Doculect) (int64, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return 0, fmt.Errorf("doculect name must be non-empty")
	}
	var lon, lat interface{}
	if d.Coord != nil {
		lon, lat = d.Coord.Lon, d.Coord.Lat
	}

	var id int64
	query := `INSERT INTO doculects (corpus_id, position, name, lon, lat, wals, ethnologue, glottolog, wals_code, iso, population)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON CONFLICT(corpus_id, name)
			  DO UPDATE SET
			    position = excluded.position,
			    lon = excluded.lon,
			    lat = excluded.lat
			  RETURNING id`
	err := db.QueryRow(query, corpusID, position, name, lon, lat,
		d.WALS, d.Ethnologue, d.Glottolog, d.WALSCode, d.ISO, d.Population).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert doculect: %w", err)
	}
	return id, nil
}

// CreateOrGetSynset upserts a meaning of a doculect and returns its id.
func CreateOrGetSynset(db DBExecutor, doculectID int64, position int, meaning string) (int64, error) {
	if doculectID <= 0 {
		return 0, fmt.Errorf("doculectID must be positive")
	}
	var id int64
	err := db.QueryRow(`INSERT INTO synsets (doculect_id, position, meaning) VALUES (?, ?, ?)
	ON CONFLICT(doculect_id, meaning) DO UPDATE SET position = excluded.position
	RETURNING id`, doculectID, position, meaning).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert synset: %w", err)
	}
	return id, nil
}

// PutWord stores the form at the given position of a synset together with
// its segmented phones.
func PutWord(db DBExecutor, synsetID int64, position int, w corpus.Word, phones string) error {
	if synsetID <= 0 {
		return fmt.Errorf("synsetID must be positive")
	}
	_, err := db.Exec(`INSERT INTO words (synset_id, position, form, loan, phones) VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(synset_id, position) DO UPDATE SET
	  form = excluded.form,
	  loan = excluded.loan,
	  phones = excluded.phones`, synsetID, position, w.Form, w.Loan, phones)
	return err
}

// DoculectQuery selects stored doculects. Zero values select everything.
type DoculectQuery struct {
	CorpusID   int64
	Names      []string
	MinSynsets int
}

func (q DoculectQuery) builder() squirrel.SelectBuilder {
	sb := squirrel.Select("d.id", "d.name", "d.lon", "d.lat", "d.wals", "d.ethnologue", "d.glottolog", "d.wals_code", "d.iso", "d.population").
		From("doculects d").
		OrderBy("d.corpus_id", "d.position")
	if q.CorpusID > 0 {
		sb = sb.Where(squirrel.Eq{"d.corpus_id": q.CorpusID})
	}
	if len(q.Names) > 0 {
		sb = sb.Where(squirrel.Eq{"d.name": q.Names})
	}
	if q.MinSynsets > 0 {
		sb = sb.Where("(SELECT COUNT(*) FROM synsets s WHERE s.doculect_id = d.id) >= ?", q.MinSynsets)
	}
	return sb
}

// LoadDoculects rebuilds the corpus model from the store, in import order.
func LoadDoculects(db DBExecutor, q DoculectQuery) ([]*corpus.Doculect, error) {
	query, args, err := q.builder().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build doculect query: %w", err)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	var (
		out  []*corpus.Doculect
		ids  []int64
		byID = map[int64]*corpus.Doculect{}
	)
	for rows.Next() {
		var (
			id       int64
			d        corpus.Doculect
			lon, lat sql.NullFloat64
		)
		if err := rows.Scan(&id, &d.Name, &lon, &lat, &d.WALS, &d.Ethnologue, &d.Glottolog, &d.WALSCode, &d.ISO, &d.Population); err != nil {
			rows.Close()
			return nil, err
		}
		if lon.Valid && lat.Valid {
			d.Coord = &corpus.Coordinate{Lon: lon.Float64, Lat: lat.Float64}
		}
		out = append(out, &d)
		ids = append(ids, id)
		byID[id] = &d
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return out, nil
	}
	if err := loadSynsets(db, ids, byID); err != nil {
		return nil, err
	}
	return out, nil
}

func loadSynsets(db DBExecutor, ids []int64, byID map[int64]*corpus.Doculect) error {
	query, args, err := squirrel.Select("s.doculect_id", "s.meaning", "w.form", "w.loan").
		From("synsets s").
		LeftJoin("words w ON w.synset_id = s.id").
		Where(squirrel.Eq{"s.doculect_id": ids}).
		OrderBy("s.doculect_id", "s.position", "w.position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build synset query: %w", err)
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			docID   int64
			meaning string
			form    sql.NullString
			loan    sql.NullBool
		)
		if err := rows.Scan(&docID, &meaning, &form, &loan); err != nil {
			return err
		}
		d := byID[docID]
		n := len(d.Synsets)
		if n == 0 || d.Synsets[n-1].Meaning != meaning {
			d.Synsets = append(d.Synsets, corpus.Synset{Meaning: meaning})
			n++
		}
		if form.Valid {
			d.Synsets[n-1].Words = append(d.Synsets[n-1].Words, corpus.Word{Form: form.String, Loan: loan.Bool})
		}
	}
	return rows.Err()
}

// GetPhones returns the stored segmentation of every word of a doculect,
// keyed by form.
func GetPhones(db DBExecutor, corpusID int64, doculect string) (map[string]string, error) {
	query, args, err := squirrel.Select("w.form", "w.phones").
		From("words w").
		Join("synsets s ON s.id = w.synset_id").
		Join("doculects d ON d.id = s.doculect_id").
		Where(squirrel.Eq{"d.corpus_id": corpusID, "d.name": doculect}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var form, phones string
		if err := rows.Scan(&form, &phones); err != nil {
			return nil, err
		}
		out[form] = phones
	}
	return out, rows.Err()
}

// CreateRun records a new scoring run and returns its id.
func CreateRun(db DBExecutor, corpusID int64, scales int, options string) (string, error) {
	if scales <= 0 {
		return "", fmt.Errorf("scales must be positive, got %d", scales)
	}
	id := uuid.NewString()
	var corpusArg interface{}
	if corpusID > 0 {
		corpusArg = corpusID
	}
	_, err := db.Exec(`INSERT INTO runs (id, corpus_id, scales, options, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, corpusArg, scales, options, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// SaveIndex stores one index value. NaN is stored as NULL.
func SaveIndex(db DBExecutor, runID, doculect string, scale int, value float64) error {
	if _, err := uuid.Parse(runID); err != nil {
		return fmt.Errorf("run id: %w", err)
	}
	_, err := db.Exec(`INSERT INTO indices (run_id, doculect, scale, value) VALUES (?, ?, ?, ?)
	ON CONFLICT(run_id, doculect, scale) DO UPDATE SET value = excluded.value`,
		runID, doculect, scale, nullableFloat(value))
	return err
}

// GetRun returns the run with the given id.
func GetRun(db DBExecutor, runID string) (Run, error) {
	var (
		r        Run
		corpusID sql.NullInt64
	)
	err := db.QueryRow(`SELECT id, corpus_id, scales, options, created_at FROM runs WHERE id = ?`, runID).
		Scan(&r.ID, &corpusID, &r.Scales, &r.Options, &r.CreatedAt)
	r.CorpusID = corpusID.Int64
	return r, err
}

// GetRunIndices returns the stored values of a run ordered by doculect and
// scale.
func GetRunIndices(db DBExecutor, runID string) ([]IndexRecord, error) {
	query, args, err := squirrel.Select("doculect", "scale", "value").
		From("indices").
		Where(squirrel.Eq{"run_id": runID}).
		OrderBy("doculect", "scale").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []IndexRecord
	for rows.Next() {
		var (
			r IndexRecord
			v sql.NullFloat64
		)
		if err := rows.Scan(&r.Doculect, &r.Scale, &v); err != nil {
			return nil, err
		}
		r.Value = math.NaN()
		if v.Valid {
			r.Value = v.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
