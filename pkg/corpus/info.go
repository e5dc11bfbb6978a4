package corpus

import (
	"fmt"
	"log/slog"
)

// Info summarises a corpus.
type Info struct {
	Doculects int
	Meanings  int
	Words     int

	// Distinct ISO codes.
	Languages int
	// Distinct top-level families per classification scheme.
	FamiliesWALS       int
	FamiliesEthnologue int
	FamiliesGlottolog  int
}

// Describe counts doculects, meanings, words and distinct language and
// family names. Empty names are not counted.
func Describe(doculects []*Doculect) Info {
	var info Info
	langs := map[string]struct{}{}
	wals := map[string]struct{}{}
	eth := map[string]struct{}{}
	glot := map[string]struct{}{}
	add := func(set map[string]struct{}, v string) {
		if v != "" {
			set[v] = struct{}{}
		}
	}
	for _, d := range doculects {
		info.Doculects++
		info.Meanings += len(d.Synsets)
		info.Words += d.WordCount()
		add(langs, d.ISO)
		add(wals, d.Family())
		add(eth, classLevel(d.Ethnologue, ",", 0))
		add(glot, classLevel(d.Glottolog, ",", 0))
	}
	info.Languages = len(langs)
	info.FamiliesWALS = len(wals)
	info.FamiliesEthnologue = len(eth)
	info.FamiliesGlottolog = len(glot)
	return info
}

// LogValue lets Info be logged as a group.
func (i Info) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("doculects", i.Doculects),
		slog.Int("meanings", i.Meanings),
		slog.Int("words", i.Words),
		slog.Int("languages", i.Languages),
		slog.Int("families_wals", i.FamiliesWALS),
		slog.Int("families_ethnologue", i.FamiliesEthnologue),
		slog.Int("families_glottolog", i.FamiliesGlottolog),
	)
}

func (i Info) String() string {
	return fmt.Sprintf("Total: %d doculects, having %d meanings and %d words\n"+
		"Corresponding to: %d languages, %d families (WALS), %d families (Ethnologue), %d families (Glottolog)",
		i.Doculects, i.Meanings, i.Words,
		i.Languages, i.FamiliesWALS, i.FamiliesEthnologue, i.FamiliesGlottolog)
}
