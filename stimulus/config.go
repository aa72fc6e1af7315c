// Package stimulus generates constrained-random protection-region
// configurations and flash operations. All randomness flows through an
// injected rand.Rand so a run is reproducible from its seed.
package stimulus

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// A DistributionConfig holds the externally supplied policy knobs that
// shape every random draw. It is read-only to the generators. Percentages
// are in [0, 100].
type DistributionConfig struct {
	MaxConfigs      int
	MaxOpsPerConfig int

	EraseBankPct       int
	OpInfoPartitionPct int
	MaxWordsPerOp      int

	NumEnabledRegions      int
	RegionReadEnPct        int
	RegionProgramEnPct     int
	RegionEraseEnPct       int
	RegionMaxPages         int
	RegionInfoPartitionPct int
	AllowRegionOverlap     bool

	DefaultReadEnPct    int
	DefaultProgramEnPct int
	DefaultEraseEnPct   int
	BankEraseDisablePct int
}

// DefaultDistributionConfig returns a permissive smoke-test profile.
func DefaultDistributionConfig() DistributionConfig {
	return DistributionConfig{
		MaxConfigs:      4,
		MaxOpsPerConfig: 50,

		EraseBankPct:       10,
		OpInfoPartitionPct: 10,
		MaxWordsPerOp:      16,

		NumEnabledRegions:      4,
		RegionReadEnPct:        90,
		RegionProgramEnPct:     90,
		RegionEraseEnPct:       90,
		RegionMaxPages:         32,
		RegionInfoPartitionPct: 10,
		AllowRegionOverlap:     false,

		DefaultReadEnPct:    90,
		DefaultProgramEnPct: 90,
		DefaultEraseEnPct:   90,
		BankEraseDisablePct: 10,
	}
}

// Validate checks counts, bounds, and percentage ranges.
func (c DistributionConfig) Validate() error {
	if c.MaxConfigs < 1 || c.MaxOpsPerConfig < 1 {
		return fmt.Errorf("stimulus: iteration bounds must be at least 1")
	}

	if c.MaxWordsPerOp < 1 {
		return fmt.Errorf("stimulus: MaxWordsPerOp must be at least 1")
	}

	if c.NumEnabledRegions < 0 {
		return fmt.Errorf("stimulus: NumEnabledRegions cannot be negative")
	}

	if c.RegionMaxPages < 1 {
		return fmt.Errorf("stimulus: RegionMaxPages must be at least 1")
	}

	pcts := map[string]int{
		"EraseBankPct":           c.EraseBankPct,
		"OpInfoPartitionPct":     c.OpInfoPartitionPct,
		"RegionReadEnPct":        c.RegionReadEnPct,
		"RegionProgramEnPct":     c.RegionProgramEnPct,
		"RegionEraseEnPct":       c.RegionEraseEnPct,
		"RegionInfoPartitionPct": c.RegionInfoPartitionPct,
		"DefaultReadEnPct":       c.DefaultReadEnPct,
		"DefaultProgramEnPct":    c.DefaultProgramEnPct,
		"DefaultEraseEnPct":      c.DefaultEraseEnPct,
		"BankEraseDisablePct":    c.BankEraseDisablePct,
	}
	for name, pct := range pcts {
		if pct < 0 || pct > 100 {
			return fmt.Errorf("stimulus: %s must be in [0, 100], got %d",
				name, pct)
		}
	}

	return nil
}

// ConfigFromEnv builds a DistributionConfig from FLASHDV_* environment
// variables layered over the defaults. If envFile is non-empty the file is
// loaded first in dotenv format; a missing file is an error.
func ConfigFromEnv(envFile string) (DistributionConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return DistributionConfig{}, fmt.Errorf(
				"stimulus: cannot load %s: %w", envFile, err)
		}
	}

	c := DefaultDistributionConfig()
	var err error

	intKnobs := map[string]*int{
		"FLASHDV_MAX_CONFIGS":               &c.MaxConfigs,
		"FLASHDV_MAX_OPS_PER_CONFIG":        &c.MaxOpsPerConfig,
		"FLASHDV_ERASE_BANK_PCT":            &c.EraseBankPct,
		"FLASHDV_OP_INFO_PARTITION_PCT":     &c.OpInfoPartitionPct,
		"FLASHDV_MAX_WORDS_PER_OP":          &c.MaxWordsPerOp,
		"FLASHDV_NUM_ENABLED_REGIONS":       &c.NumEnabledRegions,
		"FLASHDV_REGION_READ_EN_PCT":        &c.RegionReadEnPct,
		"FLASHDV_REGION_PROGRAM_EN_PCT":     &c.RegionProgramEnPct,
		"FLASHDV_REGION_ERASE_EN_PCT":       &c.RegionEraseEnPct,
		"FLASHDV_REGION_MAX_PAGES":          &c.RegionMaxPages,
		"FLASHDV_REGION_INFO_PARTITION_PCT": &c.RegionInfoPartitionPct,
		"FLASHDV_DEFAULT_READ_EN_PCT":       &c.DefaultReadEnPct,
		"FLASHDV_DEFAULT_PROGRAM_EN_PCT":    &c.DefaultProgramEnPct,
		"FLASHDV_DEFAULT_ERASE_EN_PCT":      &c.DefaultEraseEnPct,
		"FLASHDV_BANK_ERASE_DISABLE_PCT":    &c.BankEraseDisablePct,
	}
	for name, dst := range intKnobs {
		if v, ok := os.LookupEnv(name); ok {
			*dst, err = strconv.Atoi(v)
			if err != nil {
				return DistributionConfig{}, fmt.Errorf(
					"stimulus: %s: %w", name, err)
			}
		}
	}

	if v, ok := os.LookupEnv("FLASHDV_ALLOW_REGION_OVERLAP"); ok {
		c.AllowRegionOverlap, err = strconv.ParseBool(v)
		if err != nil {
			return DistributionConfig{}, fmt.Errorf(
				"stimulus: FLASHDV_ALLOW_REGION_OVERLAP: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return DistributionConfig{}, err
	}

	return c, nil
}
