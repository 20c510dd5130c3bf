// estalign: aligning cDNA and EST reads to genomic sequences.
// Copyright (c) 2017-2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/estalign/blob/master/LICENSE.txt>.

// Package config holds the tunable parameters of the aligner. Values
// are unmarshalled from Viper (see: /cmd), and default to empirically
// tuned constants.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Tuned constants. These have no derivation beyond having worked well
// on EST data, and are kept as named defaults rather than improved.
const (
	// DefaultK is the oligo length used by the k-mer index.
	DefaultK = 12

	// DefaultStride is the distance between indexed windows in long reads.
	DefaultStride = 4

	// DefaultDenseBelow is the usable read length below which every
	// window is indexed.
	DefaultDenseBelow = 150

	// DefaultClipMargin is how much the usable region of a read must
	// exceed K to be indexed.
	DefaultClipMargin = 10

	// DefaultMaxOccurrences is the number of anchors above which an
	// oligo is considered repetitive and dropped from the index.
	DefaultMaxOccurrences = 2000

	// DefaultDivergenceEdits edits within DefaultDivergenceSpan read
	// bases stop an extension.
	DefaultDivergenceEdits = 5
	DefaultDivergenceSpan  = 10

	// DefaultMinRawHits is the noise floor of raw seed hits per read.
	DefaultMinRawHits = 3

	// DefaultMaxIndelDrift is the largest diagonal difference between
	// overlapping hits of a read that are still merged.
	DefaultMaxIndelDrift = 4

	// DefaultRescueK is the oligo length used to find exons missed by
	// the seeds.
	DefaultRescueK = 8

	// DefaultRescueMinLength is the shortest uncovered read stretch
	// that is searched for a missing exon.
	DefaultRescueMinLength = 10

	// DefaultRescueRounds bounds the number of exon rescue attempts
	// per read.
	DefaultRescueRounds = 4

	// DefaultColinearTolerance is the largest overlap allowed between
	// consecutive hits of a read, in both coordinates.
	DefaultColinearTolerance = 30

	// DefaultMaxIntronLength is the largest genomic gap between
	// consecutive hits of a read.
	DefaultMaxIntronLength = 50000

	// Coverage thresholds for the weak hit filter.
	DefaultShortRead     = 50
	DefaultShortCoverage = 0.5
	DefaultLongRead      = 150
	DefaultLongCoverage  = 0.1

	// DefaultMinIntronLength is the smallest genomic gap, beyond the
	// read gap, that is checked as an intron.
	DefaultMinIntronLength = 5

	// DefaultFlankLength bases on each side of an intron must match.
	DefaultFlankLength = 8

	// DefaultFlankErrors is the number of mismatches tolerated in each
	// flank. Ambiguous bases never count.
	DefaultFlankErrors = 0

	// DefaultJunctionSlack is how far around the hit boundaries the
	// junction split is searched.
	DefaultJunctionSlack = 15

	// DefaultZoneGap is the largest genomic gap between reads that are
	// still put in the same zone.
	DefaultZoneGap = 30

	// DefaultMaxCloneSpan is the largest genomic distance between two
	// zones that share a clone and are merged.
	DefaultMaxCloneSpan = 100000

	// DefaultOverhangTolerance is the number of exon bases that may
	// overhang into an intron of a branch without forking it.
	DefaultOverhangTolerance = 8

	// DefaultTransSpliceTolerance is the distance between a trans
	// splice site and the first aligned base of a read. The leader must
	// end exactly where the alignment starts.
	DefaultTransSpliceTolerance = 0

	// DefaultPolyATolerance is the distance between a polyA site and
	// the last aligned base of a read.
	DefaultPolyATolerance = 10
)

// Seed settings for the k-mer index and seed finder.
type Seed struct {
	// oligo length, at most 32
	K int `mapstructure:"k"`

	// distance between indexed windows
	Stride int `mapstructure:"stride"`

	// usable length below which every window is indexed
	DenseBelow int `mapstructure:"dense-below"`

	// the usable read region must have at least K + ClipMargin bases
	ClipMargin int `mapstructure:"clip-margin"`

	// oligos with more anchors are dropped as repeats
	MaxOccurrences int `mapstructure:"max-occurrences"`
}

// Tracker settings for the alignment extender.
type Tracker struct {
	DivergenceEdits int `mapstructure:"divergence-edits"`
	DivergenceSpan  int `mapstructure:"divergence-span"`
}

// Filter settings for the hit filtering pipeline.
type Filter struct {
	MinRawHits        int     `mapstructure:"min-raw-hits"`
	MaxIndelDrift     int     `mapstructure:"max-indel-drift"`
	RescueK           int     `mapstructure:"rescue-k"`
	RescueMinLength   int     `mapstructure:"rescue-min-length"`
	RescueRounds      int     `mapstructure:"rescue-rounds"`
	ColinearTolerance int     `mapstructure:"colinear-tolerance"`
	MaxIntronLength   int     `mapstructure:"max-intron-length"`
	ShortRead         int     `mapstructure:"short-read"`
	ShortCoverage     float64 `mapstructure:"short-coverage"`
	LongRead          int     `mapstructure:"long-read"`
	LongCoverage      float64 `mapstructure:"long-coverage"`
}

// Intron settings for the splice detector and slider.
type Intron struct {
	MinIntronLength int `mapstructure:"min-intron-length"`
	FlankLength     int `mapstructure:"flank-length"`
	FlankErrors     int `mapstructure:"flank-errors"`
	JunctionSlack   int `mapstructure:"junction-slack"`

	// report introns at their packed-left position without sliding
	NoSlide bool `mapstructure:"no-slide"`
}

// Assembly settings for the gene assembler.
type Assembly struct {
	ZoneGap              int `mapstructure:"zone-gap"`
	MaxCloneSpan         int `mapstructure:"max-clone-span"`
	OverhangTolerance    int `mapstructure:"overhang-tolerance"`
	TransSpliceTolerance int `mapstructure:"trans-splice-tolerance"`
	PolyATolerance       int `mapstructure:"polya-tolerance"`
}

// Config is the root-level settings struct and is a mix of settings
// available in estalign.yaml and those available from the command
// line.
type Config struct {
	Seed     Seed
	Tracker  Tracker
	Filter   Filter
	Intron   Intron
	Assembly Assembly

	// number of targets aligned in parallel, 0 for GOMAXPROCS
	Workers int
}

// Default returns the configuration with all tuned defaults.
func Default() Config {
	return Config{
		Seed: Seed{
			K:              DefaultK,
			Stride:         DefaultStride,
			DenseBelow:     DefaultDenseBelow,
			ClipMargin:     DefaultClipMargin,
			MaxOccurrences: DefaultMaxOccurrences,
		},
		Tracker: Tracker{
			DivergenceEdits: DefaultDivergenceEdits,
			DivergenceSpan:  DefaultDivergenceSpan,
		},
		Filter: Filter{
			MinRawHits:        DefaultMinRawHits,
			MaxIndelDrift:     DefaultMaxIndelDrift,
			RescueK:           DefaultRescueK,
			RescueMinLength:   DefaultRescueMinLength,
			RescueRounds:      DefaultRescueRounds,
			ColinearTolerance: DefaultColinearTolerance,
			MaxIntronLength:   DefaultMaxIntronLength,
			ShortRead:         DefaultShortRead,
			ShortCoverage:     DefaultShortCoverage,
			LongRead:          DefaultLongRead,
			LongCoverage:      DefaultLongCoverage,
		},
		Intron: Intron{
			MinIntronLength: DefaultMinIntronLength,
			FlankLength:     DefaultFlankLength,
			FlankErrors:     DefaultFlankErrors,
			JunctionSlack:   DefaultJunctionSlack,
		},
		Assembly: Assembly{
			ZoneGap:              DefaultZoneGap,
			MaxCloneSpan:         DefaultMaxCloneSpan,
			OverhangTolerance:    DefaultOverhangTolerance,
			TransSpliceTolerance: DefaultTransSpliceTolerance,
			PolyATolerance:       DefaultPolyATolerance,
		},
	}
}

// SetDefaults registers the tuned defaults with a Viper instance, so
// that settings files and flags only need to mention what they change.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("seed.k", d.Seed.K)
	v.SetDefault("seed.stride", d.Seed.Stride)
	v.SetDefault("seed.dense-below", d.Seed.DenseBelow)
	v.SetDefault("seed.clip-margin", d.Seed.ClipMargin)
	v.SetDefault("seed.max-occurrences", d.Seed.MaxOccurrences)
	v.SetDefault("tracker.divergence-edits", d.Tracker.DivergenceEdits)
	v.SetDefault("tracker.divergence-span", d.Tracker.DivergenceSpan)
	v.SetDefault("filter.min-raw-hits", d.Filter.MinRawHits)
	v.SetDefault("filter.max-indel-drift", d.Filter.MaxIndelDrift)
	v.SetDefault("filter.rescue-k", d.Filter.RescueK)
	v.SetDefault("filter.rescue-min-length", d.Filter.RescueMinLength)
	v.SetDefault("filter.rescue-rounds", d.Filter.RescueRounds)
	v.SetDefault("filter.colinear-tolerance", d.Filter.ColinearTolerance)
	v.SetDefault("filter.max-intron-length", d.Filter.MaxIntronLength)
	v.SetDefault("filter.short-read", d.Filter.ShortRead)
	v.SetDefault("filter.short-coverage", d.Filter.ShortCoverage)
	v.SetDefault("filter.long-read", d.Filter.LongRead)
	v.SetDefault("filter.long-coverage", d.Filter.LongCoverage)
	v.SetDefault("intron.min-intron-length", d.Intron.MinIntronLength)
	v.SetDefault("intron.flank-length", d.Intron.FlankLength)
	v.SetDefault("intron.flank-errors", d.Intron.FlankErrors)
	v.SetDefault("intron.junction-slack", d.Intron.JunctionSlack)
	v.SetDefault("intron.no-slide", d.Intron.NoSlide)
	v.SetDefault("assembly.zone-gap", d.Assembly.ZoneGap)
	v.SetDefault("assembly.max-clone-span", d.Assembly.MaxCloneSpan)
	v.SetDefault("assembly.overhang-tolerance", d.Assembly.OverhangTolerance)
	v.SetDefault("assembly.trans-splice-tolerance", d.Assembly.TransSpliceTolerance)
	v.SetDefault("assembly.polya-tolerance", d.Assembly.PolyATolerance)
	v.SetDefault("workers", d.Workers)
}

// Load returns a Config populated by Viper settings (either from a
// settings file and/or command line arguments), and validates it.
func Load(v *viper.Viper) (c Config, err error) {
	SetDefaults(v)
	if err = v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("%w, while decoding configuration", err)
	}
	return c, c.Validate()
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	switch {
	case c.Seed.K < 4 || c.Seed.K > 32:
		return fmt.Errorf("seed.k must be between 4 and 32, got %v", c.Seed.K)
	case c.Seed.Stride < 1:
		return errors.New("seed.stride must be positive")
	case c.Tracker.DivergenceEdits < 1 || c.Tracker.DivergenceSpan < 1:
		return errors.New("tracker divergence settings must be positive")
	case c.Filter.RescueK < 4 || c.Filter.RescueK > 32:
		return fmt.Errorf("filter.rescue-k must be between 4 and 32, got %v", c.Filter.RescueK)
	case c.Filter.RescueMinLength < c.Filter.RescueK:
		return errors.New("filter.rescue-min-length must not be smaller than filter.rescue-k")
	case c.Filter.ColinearTolerance < 0:
		return errors.New("filter.colinear-tolerance must not be negative")
	case c.Filter.LongRead <= c.Filter.ShortRead:
		return errors.New("filter.long-read must be larger than filter.short-read")
	case c.Intron.MinIntronLength < 1:
		return errors.New("intron.min-intron-length must be positive")
	case c.Intron.FlankLength < 1:
		return errors.New("intron.flank-length must be positive")
	case c.Workers < 0:
		return errors.New("workers must not be negative")
	}
	return nil
}

// MinCoverage returns the fraction of its usable length that a read
// must align to survive the weak hit filter. It is ShortCoverage up to
// ShortRead bases, LongCoverage from LongRead bases on, and linear in
// between.
func (f Filter) MinCoverage(usable int) float64 {
	switch {
	case usable <= f.ShortRead:
		return f.ShortCoverage
	case usable >= f.LongRead:
		return f.LongCoverage
	}
	t := float64(usable-f.ShortRead) / float64(f.LongRead-f.ShortRead)
	return f.ShortCoverage + t*(f.LongCoverage-f.ShortCoverage)
}
