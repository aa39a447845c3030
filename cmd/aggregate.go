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
	"bytes"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/exascience/pargo/parallel"
	"golang.org/x/sync/errgroup"

	"github.com/exascience/elgvcf/calls"
	"github.com/exascience/elgvcf/fasta"
	"github.com/exascience/elgvcf/gvcf"
	"github.com/exascience/elgvcf/internal"
	"github.com/exascience/elgvcf/intervals"
	"github.com/exascience/elgvcf/vcf"
)

// AggregateHelp is the help string for this command.
const AggregateHelp = "aggregate parameters:\n" +
	"elgvcf aggregate calls-file gvcf-file\n" +
	"--reference elfasta-or-fasta-file\n" +
	"[--region chrom[:start-end]] (can be repeated)\n" +
	"[--target-regions bed-file]\n" +
	"[--config yaml-file]\n" +
	"[--min-gqx nr] (0 disables the filter)\n" +
	"[--max-depth nr] (0 disables the filter)\n" +
	"[--block-max-nonref fraction]\n" +
	"[--block-label label]\n" +
	"[--sample-name name]\n" +
	"[--nr-of-threads nr]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--log-path path]\n"

// regionList collects repeated --region parameters.
type regionList []string

func (regions *regionList) String() string {
	return strings.Join(*regions, ",")
}

func (regions *regionList) Set(region string) error {
	*regions = append(*regions, region)
	return nil
}

// A reportRange is the unit of parallel work: one range of one contig,
// aggregated into its own buffer.
type reportRange struct {
	segment fasta.Segment
	contig  *calls.Contig
	r       gvcf.Range
	out     bytes.Buffer
}

func addContigRanges(ranges []*reportRange, segment fasta.Segment, contig *calls.Contig, ivals []intervals.Interval) []*reportRange {
	for _, interval := range intervals.Intersect(ivals, 0, segment.Len()) {
		ranges = append(ranges, &reportRange{segment: segment, contig: contig, r: interval.Range()})
	}
	return ranges
}

// buildReportRanges determines what to report, in reference order.
// Explicit regions take precedence over the contigs of the call file.
// Target regions further restrict the result.
func buildReportRanges(ref *fasta.Reference, allCalls *calls.Calls, regions []string, targets map[string][]intervals.Interval) ([]*reportRange, error) {
	selected := make(map[string][]intervals.Interval)
	if len(regions) > 0 {
		for _, region := range regions {
			chrom, interval, err := intervals.ParseRegion(region)
			if err != nil {
				return nil, err
			}
			selected[chrom] = append(selected[chrom], interval)
		}
	} else {
		for _, contig := range allCalls.Contigs {
			selected[*contig.Name] = []intervals.Interval{intervals.Whole}
		}
	}
	for chrom := range selected {
		if _, ok := ref.Segment(chrom); !ok {
			return nil, fmt.Errorf("contig %v not found in reference", chrom)
		}
	}
	intervals.Normalize(selected)

	var ranges []*reportRange
	for _, chrom := range ref.Contigs() {
		ivals, ok := selected[chrom]
		if !ok {
			continue
		}
		if targets != nil {
			var restricted []intervals.Interval
			for _, interval := range ivals {
				restricted = append(restricted, intervals.Intersect(targets[chrom], interval.Start, interval.End)...)
			}
			ivals = restricted
		}
		segment, _ := ref.Segment(chrom)
		contig := allCalls.Contig(chrom)
		if contig != nil {
			if end := contig.End(); end > segment.Len() {
				return nil, fmt.Errorf("calls on %v extend to position %v, beyond the reference length %v", chrom, end, segment.Len())
			}
		}
		ranges = addContigRanges(ranges, segment, contig, ivals)
	}
	return ranges, nil
}

func (rr *reportRange) aggregate(opt *gvcf.Options) error {
	agg := gvcf.NewAggregator(opt, rr.segment.Name, rr.r, rr.segment, &rr.out)
	if rr.contig == nil {
		return agg.Finalize()
	}
	return rr.contig.Replay(agg, rr.r)
}

// Aggregate implements the elgvcf aggregate command.
func Aggregate() error {
	var (
		referenceFile, targetRegionsFile, configFile string
		blockLabel, sampleName                       string
		minGQX, maxDepth                             int
		blockMaxNonref                               float64
		regions                                      regionList
		nrOfThreads                                  int
		timed                                        bool
		profile, logPath                             string
	)

	var flags flag.FlagSet
	flags.StringVar(&referenceFile, "reference", "", "reference genome as .elfasta or (gzipped) FASTA file")
	flags.Var(&regions, "region", "only report the given region, chrom[:start-end] with 1-based inclusive bounds")
	flags.StringVar(&targetRegionsFile, "target-regions", "", "only report the regions in the given BED file")
	flags.StringVar(&configFile, "config", "", "read aggregation options from the given YAML file")
	flags.IntVar(&minGQX, "min-gqx", 0, "minimum GQX for a call to pass, 0 disables the filter")
	flags.IntVar(&maxDepth, "max-depth", 0, "maximum depth for a call to pass, 0 disables the filter")
	flags.Float64Var(&blockMaxNonref, "block-max-nonref", 0, "maximum non-reference allele fraction of block sites")
	flags.StringVar(&blockLabel, "block-label", "", "INFO label of non-variant site blocks")
	flags.StringVar(&sampleName, "sample-name", vcf.DefaultSampleName, "name of the sample column")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file(s)")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 4, AggregateHelp)

	input := getFilename(os.Args[2], AggregateHelp)
	output := getFilename(os.Args[3], AggregateHelp)

	setLogOutput(logPath)

	opt, err := gvcf.LoadOptions(configFile)
	if err != nil {
		return err
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-gqx":
			opt.IsMinGQX, opt.MinGQX = minGQX > 0, minGQX
		case "max-depth":
			opt.IsMaxDepth, opt.MaxDepth = maxDepth > 0, maxDepth
		case "block-max-nonref":
			opt.BlockMaxNonref = blockMaxNonref
		case "block-label":
			opt.BlockLabel = blockLabel
		}
	})

	// sanity checks

	sanityChecksFailed := false

	if !checkExist("", input) {
		sanityChecksFailed = true
	}
	if !checkCreate("", output) {
		sanityChecksFailed = true
	}
	if !checkExist("--reference", referenceFile) {
		sanityChecksFailed = true
	}
	if targetRegionsFile != "" && !checkExist("--target-regions", targetRegionsFile) {
		sanityChecksFailed = true
	}
	if err := opt.Validate(); err != nil {
		log.Println("Error:", err)
		sanityChecksFailed = true
	}
	if nrOfThreads < 0 {
		log.Println("Error: Invalid nr-of-threads: ", nrOfThreads)
		sanityChecksFailed = true
	}
	if sampleName == "" {
		log.Println("Error: Empty sample name")
		sanityChecksFailed = true
	}

	if sanityChecksFailed {
		fmt.Fprint(os.Stderr, AggregateHelp)
		return errInvalidParameters
	}

	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
	} else {
		nrOfThreads = runtime.GOMAXPROCS(0)
	}

	// building the command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " aggregate ", input, " ", output, " --reference ", referenceFile)
	for _, region := range regions {
		fmt.Fprint(&command, " --region ", region)
	}
	if targetRegionsFile != "" {
		fmt.Fprint(&command, " --target-regions ", targetRegionsFile)
	}
	fmt.Fprint(&command, " --min-gqx ", opt.MinGQX, " --max-depth ", opt.MaxDepth)
	fmt.Fprint(&command, " --block-max-nonref ", opt.BlockMaxNonref, " --block-label ", opt.BlockLabel)
	fmt.Fprint(&command, " --sample-name ", sampleName, " --nr-of-threads ", nrOfThreads)
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	log.Println("Executing command:\n", command.String())

	var (
		ref      *fasta.Reference
		allCalls *calls.Calls
		targets  map[string][]intervals.Interval
		ranges   []*reportRange
	)

	err = timedRun(timed, profile, "Loading reference, calls, and target regions.", 1, func() error {
		var refErr, callsErr, targetsErr error
		parallel.Do(
			func() { ref, refErr = fasta.Open(referenceFile) },
			func() { allCalls, callsErr = calls.Open(input) },
			func() {
				if targetRegionsFile != "" {
					if targets, targetsErr = intervals.FromBedFile(targetRegionsFile); targetsErr == nil {
						intervals.Normalize(targets)
					}
				}
			},
		)
		if err := errors.Join(refErr, callsErr, targetsErr); err != nil {
			if ref != nil {
				_ = ref.Close()
			}
			return err
		}
		ranges, err = buildReportRanges(ref, allCalls, regions, targets)
		return err
	})
	if err != nil {
		return err
	}
	defer internal.Close(ref)

	err = timedRun(timed, profile, "Aggregating calls.", 2, func() error {
		var g errgroup.Group
		g.SetLimit(nrOfThreads)
		for _, rr := range ranges {
			rr := rr
			g.Go(func() error { return rr.aggregate(&opt) })
		}
		return g.Wait()
	})
	if err != nil {
		return err
	}

	return timedRun(timed, profile, "Writing gVCF file.", 3, func() error {
		fullReference, err := internal.FullPathname(referenceFile)
		if err != nil {
			return err
		}
		contigs := make([]vcf.Contig, 0, len(ref.Contigs()))
		for _, chrom := range ref.Contigs() {
			segment, _ := ref.Segment(chrom)
			contigs = append(contigs, vcf.Contig{Name: chrom, Length: segment.Len()})
		}
		header := vcf.NewGvcfHeader(&opt, fullReference, contigs, sampleName)

		out, err := vcf.Create(output)
		if err != nil {
			return err
		}
		if err := header.Format(out.Writer); err != nil {
			_ = out.Close()
			return err
		}
		for _, rr := range ranges {
			if _, err := out.Write(rr.out.Bytes()); err != nil {
				_ = out.Close()
				return err
			}
		}
		return out.Close()
	})
}
