// elgvcf: a streaming gVCF aggregator for variant calling pipelines.
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
// <https://github.com/ExaScience/elgvcf/blob/master/LICENSE.txt>.

package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/exascience/elgvcf/internal"
	"github.com/exascience/elgvcf/utils"
)

// ProgramMessage is the first line printed when the elgvcf binary is
// called.
var ProgramMessage = fmt.Sprint(
	"\n", utils.ProgramName, " version ", utils.ProgramVersion,
	" compiled with ", runtime.Version(), " ", internal.PedanticMessage,
	"- see ", utils.ProgramURL, " for more information.\n",
)

// HelpMessage is printed to show the --help flag
const HelpMessage = "Print command details:\n" +
	"[--help]\n"

var errInvalidParameters = errors.New("invalid command line parameters")

func exitWithHelp(help string, code int) {
	fmt.Fprint(os.Stderr, help)
	os.Exit(code)
}

// getFilename returns a positional file parameter, handling --help in
// its place.
func getFilename(s, help string) string {
	switch {
	case s == "-h" || s == "--h" || s == "-help" || s == "--help":
		exitWithHelp(help, 0)
	case strings.HasPrefix(s, "-"):
		log.Println("Filename(s) in command line missing.")
		exitWithHelp(help, 1)
	}
	return s
}

// parseFlags parses the parameters that follow the positional ones.
func parseFlags(flags *flag.FlagSet, requiredArgs int, help string) {
	if len(os.Args) < requiredArgs {
		fmt.Fprintln(os.Stderr, "Incorrect number of parameters.")
		exitWithHelp(help, 1)
	}
	flags.SetOutput(io.Discard)
	switch err := flags.Parse(os.Args[requiredArgs:]); {
	case errors.Is(err, flag.ErrHelp):
		exitWithHelp(help, 0)
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		exitWithHelp(help, 1)
	case flags.NArg() > 0:
		fmt.Fprintln(os.Stderr, "Cannot parse remaining parameters:", flags.Args())
		exitWithHelp(help, 1)
	}
}

func logFileProblem(parameter, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)
	if parameter != "" {
		log.Printf("Error: %v for command line parameter %v.", msg, parameter)
	} else {
		log.Printf("Error: %v.", msg)
	}
}

func checkFilenameSyntax(parameter, filename string) bool {
	switch {
	case filename == "":
		logFileProblem(parameter, "missing filename")
		return false
	case filename[0] == '-':
		logFileProblem(parameter, "missing filename before %v", filename)
		return false
	}
	return true
}

// checkExist logs a problem and returns false if filename cannot be
// read.
func checkExist(parameter, filename string) bool {
	if !checkFilenameSyntax(parameter, filename) {
		return false
	}
	_, err := os.Stat(filename)
	switch {
	case err == nil:
		return true
	case errors.Is(err, fs.ErrNotExist):
		logFileProblem(parameter, "file %v does not exist", filename)
	case errors.Is(err, fs.ErrPermission):
		logFileProblem(parameter, "no permission to read file %v", filename)
	default:
		logFileProblem(parameter, "%v when trying to access file %v", err, filename)
	}
	return false
}

// checkCreate logs a problem and returns false if filename cannot be
// created. Existing files are assumed to be outputs of earlier runs.
func checkCreate(parameter, filename string) bool {
	if !checkFilenameSyntax(parameter, filename) {
		return false
	}
	if filename == "/dev/stdout" {
		return true
	}
	if _, err := os.Stat(filename); err == nil {
		return true
	}
	err := os.MkdirAll(filepath.Dir(filename), 0700)
	if err == nil {
		err = os.WriteFile(filename, nil, 0666)
	}
	switch {
	case err == nil:
		_ = os.Remove(filename)
		return true
	case errors.Is(err, fs.ErrPermission):
		logFileProblem(parameter, "no permission to create file %v", filename)
	default:
		logFileProblem(parameter, "%v when trying to create file %v", err, filename)
	}
	return false
}

const logTimeLayout = "2006-01-02-15-04-05.000000000-MST"

func createLogFilename(t time.Time) string {
	return filepath.Join("logs", utils.ProgramName, utils.ProgramName+"-"+t.Format(logTimeLayout)+".log")
}

// setLogOutput sends log output to a fresh log file below path (or the
// home directory) as well as to the original stderr. Anything else
// written to stderr only ends up in the log file.
func setLogOutput(path string) {
	if path == "" {
		path = os.Getenv("HOME")
	}
	fullPath := filepath.Join(path, createLogFilename(time.Now()))
	internal.MkdirAll(filepath.Dir(fullPath), 0700)
	f := internal.FileCreate(fullPath)
	fmt.Fprintln(f, ProgramMessage)

	orgStderr, err := unix.Dup(2)
	if err != nil {
		log.Panic(err)
	}
	if err := unix.Dup2(int(f.Fd()), 2); err != nil {
		log.Panic(err)
	}

	log.SetOutput(io.MultiWriter(f, os.NewFile(uintptr(orgStderr), "/dev/stderr")))
	log.Println("Created log file at", fullPath)
	log.Println("Command line:", os.Args)
}

// timedRun runs one phase of a command, optionally logging its
// duration and writing a CPU profile named after the phase.
func timedRun(timed bool, profile, msg string, phase int64, f func() error) error {
	if profile != "" {
		file := internal.FileCreate(profile + strconv.FormatInt(phase, 10) + ".prof")
		defer internal.Close(file)
		if err := pprof.StartCPUProfile(file); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}
	if timed {
		log.Println(msg)
		defer func(start time.Time) {
			log.Println("Elapsed time:", time.Since(start))
		}(time.Now())
	}
	return f()
}
