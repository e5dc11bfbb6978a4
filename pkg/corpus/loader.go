package corpus

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Load parses a wordlist file in the ASJP listss layout.
func Load(path string) ([]*Doculect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads doculect records. Each record is:
//
//	NAME{WALS|ETHNOLOGUE@GLOTTOLOG}
//	 1   43.80   42.00      45000   abq   abq
//	1 I	sara, %sa, //
//
// The metadata line is fixed-width: source [0:2], latitude [2:10],
// longitude [10:18], population [18:30], WALS code [30:36], ISO [36:].
// Blank columns mean absent. In word lines forms are comma separated, `%`
// marks a loanword and XXX a missing form. Lines before the first header
// are ignored.
func Parse(r io.Reader) ([]*Doculect, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		out      []*Doculect
		cur      *Doculect
		wantMeta bool
		lineNo   int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		switch {
		case strings.TrimSpace(line) == "":
			continue
		case isHeader(line):
			d, err := parseHeader(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			cur = d
			out = append(out, d)
			wantMeta = true
		case cur == nil:
			continue
		case wantMeta:
			if err := parseMeta(cur, line); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			wantMeta = false
		default:
			s, ok := parseWords(line)
			if ok {
				cur.Synsets = append(cur.Synsets, s)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func isHeader(line string) bool {
	open := strings.IndexByte(line, '{')
	return open > 0 && strings.HasSuffix(strings.TrimSpace(line), "}")
}

func parseHeader(line string) (*Doculect, error) {
	line = strings.TrimSpace(line)
	open := strings.IndexByte(line, '{')
	name := norm.NFC.String(strings.TrimSpace(line[:open]))
	if name == "" {
		return nil, fmt.Errorf("doculect header without name: %q", line)
	}
	body := line[open+1 : len(line)-1]

	d := &Doculect{Name: name}
	wals, rest, _ := strings.Cut(body, "|")
	eth, glot, _ := strings.Cut(rest, "@")
	d.WALS = strings.TrimSpace(wals)
	d.Ethnologue = strings.TrimSpace(eth)
	d.Glottolog = strings.TrimSpace(glot)
	return d, nil
}

func column(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to < 0 || to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func parseMeta(d *Doculect, line string) error {
	lat := column(line, 2, 10)
	lon := column(line, 10, 18)
	if lat != "" && lon != "" {
		y, err := strconv.ParseFloat(lat, 64)
		if err != nil {
			return fmt.Errorf("%s: latitude: %w", d.Name, err)
		}
		x, err := strconv.ParseFloat(lon, 64)
		if err != nil {
			return fmt.Errorf("%s: longitude: %w", d.Name, err)
		}
		d.Coord = &Coordinate{Lon: x, Lat: y}
	}
	if pop := column(line, 18, 30); pop != "" {
		n, err := strconv.Atoi(pop)
		if err != nil {
			return fmt.Errorf("%s: population: %w", d.Name, err)
		}
		d.Population = n
	}
	d.WALSCode = column(line, 30, 36)
	d.ISO = column(line, 36, -1)
	return nil
}

// parseWords reads "N gloss<TAB>forms //". ok is false for lines that are
// not word lines or carry no form.
func parseWords(line string) (Synset, bool) {
	head, forms, found := strings.Cut(line, "\t")
	if !found {
		return Synset{}, false
	}
	fields := strings.Fields(head)
	if len(fields) < 2 {
		return Synset{}, false
	}
	if _, err := strconv.Atoi(fields[0]); err != nil {
		return Synset{}, false
	}
	s := Synset{Meaning: strings.Join(fields[1:], " ")}

	forms, _, _ = strings.Cut(forms, "//")
	for _, f := range strings.Split(forms, ",") {
		f = strings.TrimSpace(f)
		if f == "" || f == "XXX" {
			continue
		}
		w := Word{Form: f}
		if strings.HasPrefix(f, "%") {
			w.Loan = true
			w.Form = strings.TrimSpace(f[1:])
		}
		if w.Form != "" {
			s.Words = append(s.Words, w)
		}
	}
	return s, len(s.Words) > 0
}
