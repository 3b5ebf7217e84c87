package bptree

import (
	"os"

	"gopkg.in/yaml.v3"
)

// LockGranularity selects how Tree/Pager coordinate concurrent cursors.
type LockGranularity int

const (
	// LockCoarse takes a single reader-writer lock per tree: write cursors
	// hold it in write mode for their whole lifetime, read cursors in read
	// mode. No page is ever individually locked.
	LockCoarse LockGranularity = iota
	// LockPerPage gives every page its own reader-writer lock plus a
	// pager-wide allocation lock; readers descend hand-over-hand.
	LockPerPage
)

func (g LockGranularity) String() string {
	switch g {
	case LockCoarse:
		return "coarse"
	case LockPerPage:
		return "per-page"
	default:
		return "unknown"
	}
}

// UnmarshalYAML lets LockGranularity be written as "coarse"/"per-page" in a
// config file instead of a bare integer.
func (g *LockGranularity) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	switch s {
	case "coarse", "":
		*g = LockCoarse
	case "per-page", "perpage", "per_page":
		*g = LockPerPage
	default:
		return &invalidLockGranularityError{s}
	}
	return nil
}

type invalidLockGranularityError struct{ value string }

func (e *invalidLockGranularityError) Error() string {
	return "bptree: invalid lock_granularity " + e.value + " (want \"coarse\" or \"per-page\")"
}

// Config holds the startup-time knobs spec.md §6 lists alongside the
// compile-time constants (PageSize, HeaderSize, MaxTreeDepth, MinCellSize
// stay fixed — the in-page layout arithmetic is written against them).
type Config struct {
	// LockGranularity picks coarse tree-wide locking or per-page locking.
	LockGranularity LockGranularity `yaml:"lock_granularity"`
	// PageCapacityHint pre-sizes the pager's backing array to avoid
	// reallocation churn during bulk loads; it is not a hard cap.
	PageCapacityHint int `yaml:"page_capacity_hint"`
	// MaxPages bounds the pager's backing array; 0 means unbounded. Once
	// reached, allocation is a fatal pager-exhaustion error.
	MaxPages uint32 `yaml:"max_pages"`
}

// DefaultConfig returns the configuration a Tree uses when none is supplied:
// coarse locking, a modest capacity hint, and no page cap.
func DefaultConfig() Config {
	return Config{
		LockGranularity:  LockCoarse,
		PageCapacityHint: 64,
		MaxPages:         0,
	}
}

// LoadConfig reads a YAML configuration file. Missing fields keep their
// DefaultConfig value.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
