package config

import (
	"fmt"
	"strings"

	"github.com/japaniel/sonority/pkg/sonority"
)

// Validate checks values the loaders cannot.
func (c *Config) Validate() error {
	if c.Corpus.MinSynsets < 0 {
		return fmt.Errorf("corpus.min_synsets must be >= 0 (got %d)", c.Corpus.MinSynsets)
	}
	if err := c.Scoring.validate(sonority.DefaultTable().Scales()); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if err := c.Climate.validate(); err != nil {
		return fmt.Errorf("climate: %w", err)
	}
	if c.Database.BatchSize <= 0 {
		return fmt.Errorf("database.batch_size must be > 0 (got %d)", c.Database.BatchSize)
	}
	if c.Database.Workers <= 0 {
		return fmt.Errorf("database.workers must be > 0 (got %d)", c.Database.Workers)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

func (s *ScoringConfig) validate(scales int) error {
	if len(s.Clicks) == 0 {
		return nil
	}
	if len(s.Clicks) != scales {
		return fmt.Errorf("clicks has %d values for %d scales", len(s.Clicks), scales)
	}
	for i, v := range s.Clicks {
		if v < 0 {
			return fmt.Errorf("clicks[%d] must be >= 0 (got %v)", i, v)
		}
	}
	return nil
}

func (c *ClimateConfig) validate() error {
	if c.FirstYear > c.LastYear {
		return fmt.Errorf("first_year %d is after last_year %d", c.FirstYear, c.LastYear)
	}
	if c.FirstYear < 1000 {
		return fmt.Errorf("first_year must be a four digit year (got %d)", c.FirstYear)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be > 0 (got %d)", c.Workers)
	}
	return nil
}

// ScoringOptions converts the scoring switches.
func (c *Config) ScoringOptions() sonority.Options {
	return sonority.Options{
		ByMeaning:   c.Scoring.ByMeaning,
		WithLoans:   c.Scoring.WithLoans,
		MergeVowels: c.Scoring.MergeVowels,
	}
}
