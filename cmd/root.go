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

// Package cmd implements the estalign commands.
package cmd

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/grailbio/base/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/estalign/config"
	"github.com/exascience/estalign/store"
	"github.com/exascience/estalign/utils"
)

// ProgramMessage is the first line printed when the estalign binary is
// called.
var ProgramMessage = fmt.Sprint(
	"\n", utils.ProgramName, " version ", utils.ProgramVersion,
	" compiled with ", runtime.Version(), " - see ", utils.ProgramURL, " for more information.\n",
)

// settings holds the tunables, from estalign.yaml and the command line.
var settings = viper.New()

var (
	readsFile    string
	metadataFile string
	genomeFile   string
	settingsFile string
	logPath      string
	profile      string
	timed        bool
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   utils.ProgramName,
	Short: "Align cDNA and EST reads to genomic sequences and assemble gene models",
	Long: `estalign seeds reads against genomic targets with short oligos, extends
and filters the hits, confirms introns at canonical splice sites, and
assembles the aligned reads of each target into alternatively spliced
gene models.`,
	Version:       utils.ProgramVersion,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.Debug)
		}
		if logPath != "" {
			setLogOutput(logPath)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&readsFile, "reads", "", "FASTA file of reads, may be gzip compressed")
	flags.StringVar(&metadataFile, "metadata", "", "tab separated metadata file for the reads")
	flags.StringVar(&genomeFile, "genome", "", "genome in FASTA or .elfasta format")
	flags.StringVar(&settingsFile, "settings", "", "settings file (default ./estalign.yaml, if present)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.StringVar(&profile, "profile", "", "write a CPU profile per phase with the given prefix")
	flags.BoolVar(&timed, "timed", false, "log the elapsed time per phase")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log per target details")
	flags.Int("workers", 0, "number of targets aligned in parallel (0 means all processors)")
	flags.Bool("no-slide", false, "keep introns where the alignment put them")
	_ = settings.BindPFlag("workers", flags.Lookup("workers"))
	_ = settings.BindPFlag("intron.no-slide", flags.Lookup("no-slide"))

	rootCmd.AddCommand(alignCmd, alignAllCmd, alignKeysetCmd, exportIntronsCmd, fastaToElfastaCmd)
}

// Execute runs the command named on the command line.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the settings file, if any, and returns the
// validated configuration.
func loadConfig() (config.Config, error) {
	if settingsFile != "" {
		settings.SetConfigFile(settingsFile)
		if err := settings.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("%w, while reading settings file %v", err, settingsFile)
		}
	} else {
		settings.SetConfigName(utils.ProgramName)
		settings.AddConfigPath(".")
		if err := settings.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return config.Config{}, fmt.Errorf("%w, while reading settings", err)
			}
		}
	}
	cfg, err := config.Load(settings)
	if err != nil {
		return cfg, err
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

// openStore opens the input files named on the command line.
func openStore() (*store.Files, error) {
	if readsFile == "" || genomeFile == "" {
		return nil, errors.New("both --reads and --genome are required")
	}
	if !checkExist("--reads", readsFile) || !checkExist("--genome", genomeFile) {
		return nil, errInvalidFiles
	}
	if metadataFile != "" && !checkExist("--metadata", metadataFile) {
		return nil, errInvalidFiles
	}
	return store.OpenFiles(readsFile, metadataFile, genomeFile)
}
