package corpus

import (
	"log/slog"
	"slices"
	"strings"
)

// DefaultMinSynsets is the smallest wordlist kept by Filter.
const DefaultMinSynsets = 20

// DefaultExcludedNames lists doculects whose transcriptions have no or very
// few vowels.
var DefaultExcludedNames = []string{
	"Middle Egyptian",
	"Christian Palestinian",
	"Phoenician",
	"Sabean",
	"Ugaritic",
}

// DefaultMeanings is the 40-item Swadesh subset used for the index.
var DefaultMeanings = []string{
	"I", "you", "we", "one", "two", "person", "fish", "dog", "louse", "tree",
	"leaf", "skin", "blood", "bone", "horn", "ear", "eye", "nose", "tooth", "tongue",
	"knee", "hand", "breast", "liver", "drink", "see", "hear", "die", "come", "sun",
	"star", "water", "stone", "fire", "path", "mountain", "night", "full", "new", "name",
}

// Rules selects the doculects kept for scoring.
type Rules struct {
	// Meanings restricts every wordlist to these glosses. Empty keeps all.
	Meanings []string
	// MinSynsets drops shorter wordlists after meaning restriction.
	MinSynsets int
	// ExcludeNames drops doculects by name.
	ExcludeNames []string
	// Available, when non-nil, keeps only doculects it contains, such as
	// the ones with climate data.
	Available map[string]bool
}

// DefaultRules returns the rules of the standard run.
func DefaultRules() Rules {
	return Rules{
		Meanings:     slices.Clone(DefaultMeanings),
		MinSynsets:   DefaultMinSynsets,
		ExcludeNames: slices.Clone(DefaultExcludedNames),
	}
}

// Filter applies r to doculects and returns the kept ones. Meaning
// restriction replaces the synset list of every input doculect in place;
// the other rules only select. Counts before and after each stage are
// logged at info level.
func Filter(log *slog.Logger, doculects []*Doculect, r Rules) []*Doculect {
	if log == nil {
		log = slog.Default()
	}
	log.Info("corpus loaded", "info", Describe(doculects))

	if len(r.Meanings) > 0 {
		keep := make(map[string]bool, len(r.Meanings))
		for _, m := range r.Meanings {
			keep[m] = true
		}
		for _, d := range doculects {
			d.Synsets = slices.DeleteFunc(d.Synsets, func(s Synset) bool { return !keep[s.Meaning] })
		}
		log.Info("meanings intersected", "meanings", len(r.Meanings), "info", Describe(doculects))
	}

	out := make([]*Doculect, 0, len(doculects))
	for _, d := range doculects {
		if reason := r.reject(d); reason != "" {
			log.Debug("doculect dropped", "name", d.Name, "reason", reason)
			continue
		}
		out = append(out, d)
	}
	log.Info("doculects filtered", "info", Describe(out))

	if r.Available != nil {
		before := len(out)
		out = slices.DeleteFunc(out, func(d *Doculect) bool { return !r.Available[d.Name] })
		log.Info("doculects without climate data dropped", "before", before, "after", len(out))
	}
	return out
}

// reject returns why d is dropped, or "" to keep it.
func (r Rules) reject(d *Doculect) string {
	switch {
	case strings.Contains(d.WALS, "Oth"):
		return "unclassified"
	case d.Proto():
		return "proto-language"
	case d.LongExtinct():
		return "ancient language"
	case slices.Contains(r.ExcludeNames, d.Name):
		return "excluded by name"
	case len(d.Synsets) < r.MinSynsets:
		return "too few meanings"
	case d.Coord == nil:
		return "no coordinates"
	}
	return ""
}
