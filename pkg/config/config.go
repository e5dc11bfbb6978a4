// Package config loads settings from a YAML or TOML file, the environment
// and defaults.
package config

// Config is the root configuration.
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus"   toml:"corpus"`
	Scoring  ScoringConfig  `yaml:"scoring"  toml:"scoring"`
	Climate  ClimateConfig  `yaml:"climate"  toml:"climate"`
	Output   OutputConfig   `yaml:"output"   toml:"output"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Log      LogConfig      `yaml:"log"      toml:"log"`
}

// CorpusConfig locates and filters the wordlist corpus.
type CorpusConfig struct {
	Path       string `yaml:"path"        toml:"path"        env:"SONORITY_CORPUS"      env-default:"data/listss19_formatted.tab"`
	CacheDir   string `yaml:"cache_dir"   toml:"cache_dir"   env:"SONORITY_CACHE_DIR"`
	NoCache    bool   `yaml:"no_cache"    toml:"no_cache"    env:"SONORITY_NO_CACHE"    env-default:"false"`
	MinSynsets int    `yaml:"min_synsets" toml:"min_synsets" env:"SONORITY_MIN_SYNSETS" env-default:"20"`
	// Meanings replaces the default 40-item meaning list when set.
	Meanings []string `yaml:"meanings" toml:"meanings" env:"SONORITY_MEANINGS" env-separator:","`

	// URL is fetched when Path does not exist. Empty disables downloads.
	URL string `yaml:"url" toml:"url" env:"SONORITY_CORPUS_URL"`
}

// ScoringConfig holds aggregation switches and per-scale click overrides.
type ScoringConfig struct {
	ByMeaning   bool `yaml:"by_meaning"   toml:"by_meaning"   env:"SONORITY_BY_MEANING"   env-default:"true"`
	WithLoans   bool `yaml:"with_loans"   toml:"with_loans"   env:"SONORITY_WITH_LOANS"   env-default:"false"`
	MergeVowels bool `yaml:"merge_vowels" toml:"merge_vowels" env:"SONORITY_MERGE_VOWELS" env-default:"false"`
	// Clicks holds one override per scale; 0 keeps the table value. Empty
	// means no overrides.
	Clicks []float64 `yaml:"clicks" toml:"clicks" env:"SONORITY_CLICKS" env-separator:","`
}

// ClimateConfig locates the monthly grids and the temperature tables.
type ClimateConfig struct {
	GridDir      string `yaml:"grid_dir"     toml:"grid_dir"     env:"SONORITY_GRID_DIR"     env-default:"data/gldas"`
	FirstYear    int    `yaml:"first_year"   toml:"first_year"   env:"SONORITY_FIRST_YEAR"   env-default:"1982"`
	LastYear     int    `yaml:"last_year"    toml:"last_year"    env:"SONORITY_LAST_YEAR"    env-default:"2021"`
	Neighbours   bool   `yaml:"neighbours"   toml:"neighbours"   env:"SONORITY_NEIGHBOURS"   env-default:"true"`
	Workers      int    `yaml:"workers"      toml:"workers"      env:"SONORITY_GRID_WORKERS" env-default:"4"`
	Temperatures string `yaml:"temperatures" toml:"temperatures" env:"SONORITY_TEMPERATURES" env-default:"data/temperatures.csv"`
	Global       string `yaml:"global"       toml:"global"       env:"SONORITY_GLOBAL"       env-default:"data/temperature_global.csv"`
}

// OutputConfig names the directory all tables and plots are written to.
type OutputConfig struct {
	Dir string `yaml:"dir" toml:"dir" env:"SONORITY_OUTPUT_DIR" env-default:"data"`
}

// DatabaseConfig holds the sqlite store settings.
type DatabaseConfig struct {
	Path      string `yaml:"path"       toml:"path"       env:"SONORITY_DB"         env-default:"sonority.db"`
	BatchSize int    `yaml:"batch_size" toml:"batch_size" env:"SONORITY_DB_BATCH"   env-default:"50"`
	Workers   int    `yaml:"workers"    toml:"workers"    env:"SONORITY_DB_WORKERS" env-default:"4"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  toml:"level"  env:"SONORITY_LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" toml:"format" env:"SONORITY_LOG_FORMAT" env-default:"text"`
}
