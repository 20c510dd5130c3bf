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

package cmd

import (
	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"

	"github.com/exascience/estalign/fasta"
)

var fastaToElfastaCmd = &cobra.Command{
	Use:   "fasta-to-elfasta fasta-file elfasta-file",
	Short: "Store a genome as a memory mappable .elfasta file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := args[0], args[1]
		if !checkExist("", input) || !checkCreate("", output) {
			return errInvalidFiles
		}
		return timedRun("Converting "+input+".", 1, func() error {
			genome, err := fasta.ParseFile(input)
			if err != nil {
				return err
			}
			log.Printf("Writing %v sequences to %v.", len(genome.Names), output)
			return fasta.ToElfasta(genome, output)
		})
	},
}
