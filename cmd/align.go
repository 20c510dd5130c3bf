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
	"errors"
	"io"

	"github.com/cheggaaa/pb/v3"
	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"

	"github.com/exascience/estalign/emit"
	"github.com/exascience/estalign/engine"
	"github.com/exascience/estalign/internal"
	"github.com/exascience/estalign/store"
)

var (
	output      string
	intronsFile string
	alter       bool
	nonSliding  bool
)

var alignCmd = &cobra.Command{
	Use:   "align target",
	Short: "Align all reads against one target",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlign(nil, args, false)
	},
}

var alignAllCmd = &cobra.Command{
	Use:   "align-all",
	Short: "Align all reads against all targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlign(nil, nil, true)
	},
}

var alignKeysetCmd = &cobra.Command{
	Use:   "align-keyset read...",
	Short: "Align the given reads against all targets",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAlign(args, nil, true)
	},
}

var exportIntronsCmd = &cobra.Command{
	Use:   "export-introns",
	Short: "Align all reads and list the confirmed introns",
	Long: `Align all reads against all targets, and write one tab separated line
per confirmed intron: target, start, end, strand, motif, number of
supporting reads, and gene.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExportIntrons()
	},
}

func init() {
	for _, cmd := range []*cobra.Command{alignCmd, alignAllCmd, alignKeysetCmd} {
		cmd.Flags().StringVarP(&output, "output", "o", "-", "ace output file")
		cmd.Flags().StringVar(&intronsFile, "introns", "", "also write the confirmed introns to this file")
	}
	exportIntronsCmd.Flags().StringVarP(&output, "output", "o", "-", "intron output file")
	for _, cmd := range []*cobra.Command{alignCmd, alignAllCmd, alignKeysetCmd, exportIntronsCmd} {
		cmd.Flags().BoolVar(&alter, "alter", false, "only list introns that are not on the main branch of their gene")
		cmd.Flags().BoolVar(&nonSliding, "nonSliding", false, "list introns where the alignment put them, before sliding")
	}
}

// progressBar shows the number of targets done on stderr.
func progressBar(aligner *engine.Aligner, targets int) *pb.ProgressBar {
	bar := pb.Full.Start(targets)
	aligner.Progress = func(string) { bar.Increment() }
	return bar
}

// align prepares a batch of reads and aligns it against the targets.
// ids and targets are taken from the store when nil.
func align(ids, targets []string, emitter emit.Emitter, showProgress bool) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	files, err := openStore()
	if err != nil {
		return err
	}
	defer internal.Close(files, &err)
	aligner := engine.New(cfg, store.NewCached(files))
	if ids == nil {
		if ids, err = files.Reads(); err != nil {
			return err
		}
	}
	if targets == nil {
		if targets, err = files.Targets(); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return errors.New("no reads to align")
	}
	var batch *engine.Batch
	if err = timedRun("Indexing reads.", 1, func() (err error) {
		batch, err = aligner.Prepare(ids)
		return err
	}); err != nil {
		return err
	}
	var stats engine.Stats
	err = timedRun("Aligning reads.", 2, func() (err error) {
		if showProgress {
			bar := progressBar(aligner, len(targets))
			defer bar.Finish()
		}
		stats, err = aligner.AlignAll(batch, targets, emitter)
		return err
	})
	stats.Log()
	return err
}

func openOutput(parameter, filename string) (io.WriteCloser, error) {
	if !checkCreate(parameter, filename) {
		return nil, errInvalidFiles
	}
	return internal.Create(filename)
}

func runAlign(ids, targets []string, showProgress bool) (err error) {
	out, err := openOutput("--output", output)
	if err != nil {
		return err
	}
	defer internal.Close(out, &err)
	emitters := emit.Multi{emit.NewAceWriter(out)}
	if intronsFile != "" {
		var introns io.WriteCloser
		if introns, err = openOutput("--introns", intronsFile); err != nil {
			return err
		}
		defer internal.Close(introns, &err)
		emitters = append(emitters, emit.NewIntronWriter(introns, alter, nonSliding))
	}
	return align(ids, targets, emitters, showProgress)
}

func runExportIntrons() (err error) {
	out, err := openOutput("--output", output)
	if err != nil {
		return err
	}
	defer internal.Close(out, &err)
	log.Debug.Printf("Exporting introns to %v.", output)
	return align(nil, nil, emit.NewIntronWriter(out, alter, nonSliding), true)
}
