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

package vcf

import (
	"fmt"

	"github.com/exascience/elgvcf/gvcf"
	"github.com/exascience/elgvcf/utils"
)

// DefaultSampleName is used for the sample column when no name is given.
const DefaultSampleName = "SAMPLE"

// NewGvcfHeader creates the header of a gVCF file with the records an
// Aggregator with the given options writes.
func NewGvcfHeader(opt *gvcf.Options, reference string, contigs []Contig, sampleName string) *Header {
	header := NewHeader()
	header.AddMeta("source", utils.ProgramName+" "+utils.ProgramVersion)
	if reference != "" {
		header.AddMeta("reference", "file://"+reference)
	}
	for _, contig := range contigs {
		header.AddContig(contig)
	}

	header.AddInfo("END", 1, Integer, "End position of the region described in this record")
	header.AddInfo(opt.BlockLabel, 0, Flag, fmt.Sprintf(
		"Non-variant site block. All sites in a block are constrained to be non-variant, "+
			"have the same filter value, and have a non-reference allele fraction below %v. "+
			"Printed site block sample values are the minimum observed in the region spanned by the block",
		opt.BlockMaxNonref))
	header.AddInfo("CIGAR", NumberA, String, "CIGAR alignment for each alternate indel allele")

	header.AddFilter(gvcf.IndelConflict.Label(), "Locus is in region with conflicting indel calls")
	header.AddFilter(gvcf.SiteConflict.Label(), "Site genotype conflicts with proximal indel call. "+
		"This is typically a heterozygous SNV call made inside of a heterozygous deletion")
	if opt.IsMinGQX {
		header.AddFilter(gvcf.LowGQX.Label(), fmt.Sprintf("Locus GQX is less than %v or not present", opt.MinGQX))
	}
	if opt.IsMaxDepth {
		header.AddFilter(gvcf.HighDepth.Label(), fmt.Sprintf("Locus depth is greater than %v", opt.MaxDepth))
	}

	header.AddFormat("GT", 1, String, "Genotype")
	header.AddFormat("GQX", 1, Integer, "Minimum of {Genotype quality assuming variant position,Genotype quality assuming non-variant position}")

	if sampleName == "" {
		sampleName = DefaultSampleName
	}
	header.Columns = append(header.Columns, sampleName)
	return header
}
