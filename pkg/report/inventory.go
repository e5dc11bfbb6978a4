package report

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/japaniel/sonority/pkg/sonority"
)

// WritePhones writes the classified phone inventory.
func WritePhones(w io.Writer, rows []sonority.PhoneRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"phone", "base", "count", "tags"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Phone, r.Base, strconv.Itoa(r.Count), r.Tags}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// StructureRow is one C/V skeleton with its count.
type StructureRow struct {
	Structure string
	Count     int
}

// Length is the number of phones.
func (r StructureRow) Length() int { return len(r.Structure) }

// Ratio is the consonant to vowel ratio.
func (r StructureRow) Ratio() string {
	return ratio(strings.Count(r.Structure, "C"), strings.Count(r.Structure, "V"))
}

func ratio(cs, vs int) string {
	if vs == 0 {
		return "C-only"
	}
	return strconv.FormatFloat(float64(cs)/float64(vs), 'f', 2, 64)
}

// SortStructures orders skeletons by count descending, then length, then
// the skeleton itself.
func SortStructures(structures map[string]int) []StructureRow {
	rows := make([]StructureRow, 0, len(structures))
	for s, n := range structures {
		rows = append(rows, StructureRow{Structure: s, Count: n})
	}
	slices.SortFunc(rows, func(a, b StructureRow) int {
		return cmp.Or(
			cmp.Compare(b.Count, a.Count),
			cmp.Compare(a.Length(), b.Length()),
			strings.Compare(a.Structure, b.Structure),
		)
	})
	return rows
}

// WriteWordStructures writes word_structures.csv.
func WriteWordStructures(w io.Writer, structures map[string]int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"structure", "length", "C-V ratio", "count"}); err != nil {
		return err
	}
	for _, r := range SortStructures(structures) {
		rec := []string{r.Structure, strconv.Itoa(r.Length()), r.Ratio(), strconv.Itoa(r.Count)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LengthRow summarises all words of one length.
type LengthRow struct {
	Length     int
	Count      int
	Consonants int
	Vowels     int
}

// Ratio is the consonant to vowel ratio over all words of the length.
func (r LengthRow) Ratio() string { return ratio(r.Consonants, r.Vowels) }

// GroupByLength sums skeleton counts per word length, shortest first.
func GroupByLength(structures map[string]int) []LengthRow {
	byLen := map[int]*LengthRow{}
	for s, n := range structures {
		r, ok := byLen[len(s)]
		if !ok {
			r = &LengthRow{Length: len(s)}
			byLen[len(s)] = r
		}
		r.Count += n
		r.Consonants += strings.Count(s, "C") * n
		r.Vowels += strings.Count(s, "V") * n
	}
	out := make([]LengthRow, 0, len(byLen))
	for _, r := range byLen {
		out = append(out, *r)
	}
	slices.SortFunc(out, func(a, b LengthRow) int { return cmp.Compare(a.Length, b.Length) })
	return out
}

// WriteWordLengths writes word_lengths.csv.
func WriteWordLengths(w io.Writer, structures map[string]int) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"length", "C-V ratio", "count"}); err != nil {
		return err
	}
	for _, r := range GroupByLength(structures) {
		if err := cw.Write([]string{strconv.Itoa(r.Length), r.Ratio(), strconv.Itoa(r.Count)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// VowelSolutions compares the vowel length treatments per doculect.
type VowelSolutions struct {
	Names              []string
	Current            []float64
	MergeVowels        []float64
	DoubleMonophthongs []float64
}

// WriteVowelSolutions writes vowel_solutions.csv.
func WriteVowelSolutions(w io.Writer, v VowelSolutions) error {
	n := len(v.Names)
	if len(v.Current) != n || len(v.MergeVowels) != n || len(v.DoubleMonophthongs) != n {
		return fmt.Errorf("report: vowel solution columns differ in length")
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"doculect_name", "current", "merge_vowels", "double_monophthongs"}); err != nil {
		return err
	}
	for i, name := range v.Names {
		rec := []string{name, Fixed4(v.Current[i]), Fixed4(v.MergeVowels[i]), Fixed4(v.DoubleMonophthongs[i])}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
