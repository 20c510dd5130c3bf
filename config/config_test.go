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

package config

import (
	"math"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	v := viper.New()
	v.Set("seed.k", 10)
	v.Set("intron.no-slide", true)
	c, err := Load(v)
	if err != nil {
		t.Fatal(err)
	}
	if c.Seed.K != 10 {
		t.Errorf("seed.k = %v, want 10", c.Seed.K)
	}
	if !c.Intron.NoSlide {
		t.Error("intron.no-slide not set")
	}
	if c.Filter.ColinearTolerance != DefaultColinearTolerance {
		t.Errorf("filter.colinear-tolerance = %v, want default", c.Filter.ColinearTolerance)
	}
	if c.Intron.FlankLength != DefaultFlankLength {
		t.Errorf("intron.flank-length = %v, want default", c.Intron.FlankLength)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"k too small", func(c *Config) { c.Seed.K = 2 }, true},
		{"k too large", func(c *Config) { c.Seed.K = 40 }, true},
		{"zero stride", func(c *Config) { c.Seed.Stride = 0 }, true},
		{"inverted coverage lengths", func(c *Config) { c.Filter.LongRead = c.Filter.ShortRead }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(&c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFilter_MinCoverage(t *testing.T) {
	f := Default().Filter
	tests := []struct {
		usable int
		want   float64
	}{
		{20, 0.5},
		{50, 0.5},
		{100, 0.3},
		{150, 0.1},
		{800, 0.1},
	}
	for _, tt := range tests {
		if got := f.MinCoverage(tt.usable); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("MinCoverage(%v) = %v, want %v", tt.usable, got, tt.want)
		}
	}
}
