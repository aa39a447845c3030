// elgvcf: a streaming gVCF aggregator for variant calling pipelines.
// Copyright (c) 2017-2019 imec vzw.

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

// elgvcf converts the site and indel calls of a variant caller into
// a gVCF file, compressing runs of non-variant sites into blocks and
// reconciling sites with the indels that overlap them.
//
// Please see https://github.com/exascience/elgvcf for a documentation
// of the tool.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/exascience/elgvcf/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: aggregate, fasta-to-elfasta")
	fmt.Fprint(os.Stderr, "\n", cmd.AggregateHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.FastaToElfastaHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "aggregate":
		err = cmd.Aggregate()
	case "fasta-to-elfasta":
		err = cmd.FastaToElfasta()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command:", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
