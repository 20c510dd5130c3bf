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
	"fmt"
	"io"
	stdlog "log"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/grailbio/base/log"
)

var errInvalidFiles = errors.New("invalid input or output files")

func logCheckFile(parameter, format string, v ...interface{}) {
	if parameter != "" {
		log.Error.Printf(format+" for command line parameter %v.", append(v, parameter)...)
	} else {
		log.Error.Printf(format+".", v...)
	}
}

func checkExist(parameter, filename string) bool {
	if len(filename) == 0 {
		logCheckFile(parameter, "Error: Missing filename")
		return false
	}
	if filename[0] == '-' {
		logCheckFile(parameter, "Error: Missing filename before %v", filename)
		return false
	}
	if _, err := os.Stat(filename); err == nil {
		return true
	} else if os.IsNotExist(err) {
		logCheckFile(parameter, "Error: File %v does not exist", filename)
		return false
	} else if os.IsPermission(err) {
		logCheckFile(parameter, "Error: No permission to read file %v", filename)
		return false
	} else {
		logCheckFile(parameter, "Error %v when trying to access file %v", err, filename)
		return false
	}
}

func checkCreate(parameter, filename string) bool {
	switch filename {
	case "", "-", "/dev/stdout":
		return true
	}
	if _, err := os.Stat(filename); err == nil {
		// Assume that the file has been written by previous estalign runs, and can be overwritten.
		return true
	}
	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err == nil {
		var f *os.File
		if f, err = os.Create(filename); err == nil {
			err = f.Close()
		}
	}
	if err != nil {
		if os.IsPermission(err) {
			logCheckFile(parameter, "Error: No permission to create file %v", filename)
		} else {
			logCheckFile(parameter, "Error %v when trying to create file %v", err, filename)
		}
		return false
	}
	_ = os.Remove(filename)
	return true
}

func createLogFilename() string {
	t := time.Now()
	zone, _ := t.Zone()
	return fmt.Sprintf("logs/estalign/estalign-%d-%02d-%02d-%02d-%02d-%02d-%09d-%v.log", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), zone)
}

// setLogOutput copies the log to a new file in the given directory.
func setLogOutput(path string) {
	fullPath := filepath.Join(path, createLogFilename())
	if err := os.MkdirAll(filepath.Dir(fullPath), 0700); err != nil {
		log.Error.Printf("%v, while creating log directory, logging to stderr only", err)
		return
	}
	f, err := os.Create(fullPath)
	if err != nil {
		log.Error.Printf("%v, while creating log file, logging to stderr only", err)
		return
	}
	fmt.Fprintln(f, ProgramMessage)
	stdlog.SetOutput(io.MultiWriter(f, os.Stderr))
	log.Printf("Created log file at %v", fullPath)
	log.Printf("Command line: %v", os.Args)
}

func timedRun(msg string, phase int64, f func() error) error {
	if profile != "" {
		filename := profile + strconv.FormatInt(phase, 10) + ".prof"
		file, err := os.Create(filename)
		if err != nil {
			return err
		}
		defer func() {
			_ = file.Close()
		}()
		if err := pprof.StartCPUProfile(file); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if timed {
		log.Print(msg)
		start := time.Now()
		defer func() {
			log.Printf("Elapsed time: %v", time.Since(start))
		}()
	}
	return f()
}
