// Package corpus holds the wordlist model and the ASJP-style loader.
package corpus

import "strings"

// Word is one transcribed form of a meaning.
type Word struct {
	Form string `msgpack:"f"`
	Loan bool   `msgpack:"l,omitempty"`
}

// Synset is the set of forms sharing one meaning in one doculect.
type Synset struct {
	Meaning string `msgpack:"m"`
	Words   []Word `msgpack:"w"`
}

// Coordinate is a geographic position in degrees.
type Coordinate struct {
	Lon float64 `msgpack:"x"`
	Lat float64 `msgpack:"y"`
}

// Doculect is one recorded language or dialect with its wordlist.
type Doculect struct {
	Name string `msgpack:"name"`
	// Coord is nil when the record has no location.
	Coord *Coordinate `msgpack:"coord"`

	// Classifications as written in the header, e.g. "IE.GERMANIC".
	WALS       string `msgpack:"wals"`
	Ethnologue string `msgpack:"eth"`
	Glottolog  string `msgpack:"glot"`

	WALSCode   string `msgpack:"wcode"`
	ISO        string `msgpack:"iso"`
	Population int    `msgpack:"pop"`

	Synsets []Synset `msgpack:"synsets"`
}

// Population codes for extinct languages.
const (
	PopulationRecentlyExtinct = -1
	PopulationLongExtinct     = -2
)

// LongExtinct reports an ancient language.
func (d *Doculect) LongExtinct() bool { return d.Population == PopulationLongExtinct }

// Proto reports a reconstructed language, which has no ISO code.
func (d *Doculect) Proto() bool { return d.ISO == "" }

// WordCount is the number of forms over all synsets.
func (d *Doculect) WordCount() int {
	n := 0
	for _, s := range d.Synsets {
		n += len(s.Words)
	}
	return n
}

// Family is the first WALS classification level.
func (d *Doculect) Family() string {
	return classLevel(d.WALS, ".", 0)
}

// Genus is the second WALS classification level.
func (d *Doculect) Genus() string {
	return classLevel(d.WALS, ".", 1)
}

func classLevel(s, sep string, level int) string {
	parts := strings.Split(s, sep)
	if level >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[level])
}
