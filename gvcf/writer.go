package gvcf

import (
	"fmt"
	"strconv"
)

// SiteFormat and IndelFormat are the FORMAT columns of site and indel
// records.
const (
	SiteFormat  = "GT:GQX"
	IndelFormat = "GT:GQX"
)

// siteGTLabel returns the displayed genotype of a site.
func siteGTLabel(si *SiteCall) string {
	switch si.Smod.ModifiedGT {
	case ModifiedZero:
		return "0"
	case ModifiedOne:
		return "1"
	case ModifiedUnknown:
		return "."
	}
	ref := si.RefBase()
	if si.Smod.IsUnknown || !si.Smod.IsUsedCovered || ref < 0 {
		return "./."
	}
	alleles := genotypeAlleles[si.Smod.MaxGT]
	switch {
	case alleles[0] == alleles[1] && alleles[0] == ref:
		return "0/0"
	case alleles[0] == alleles[1]:
		return "1/1"
	case alleles[0] == ref || alleles[1] == ref:
		return "0/1"
	default:
		return "1/2"
	}
}

func indelGTLabel(ii *IndelCall) string {
	if ii.Imod.IsOverlap {
		return "1/2"
	}
	switch ii.Dindel.MaxGT {
	case Hom:
		return "1/1"
	case Het:
		return "0/1"
	default:
		return "0/0"
	}
}

// appendVcfAlt appends the non-reference alleles of gt, in base order.
func appendVcfAlt(out []byte, gt Genotype, ref int) []byte {
	printed := false
	for b := 0; b < NBase; b++ {
		if b == ref || !gt.Contains(b) {
			continue
		}
		if printed {
			out = append(out, ',')
		}
		out = append(out, idToBase[b])
		printed = true
	}
	if !printed {
		out = append(out, '.')
	}
	return out
}

func (agg *Aggregator) write(line []byte) {
	if agg.err != nil {
		return
	}
	if _, err := agg.out.Write(line); err != nil {
		agg.err = fmt.Errorf("writing gVCF record on %v: %w", agg.chrom, err)
	}
}

func (agg *Aggregator) writeSiteRecord(si *SiteCall) {
	out := append(agg.line[:0], agg.chrom...)
	out = append(out, '\t')
	out = append(strconv.AppendInt(out, int64(si.Pos)+1, 10), '\t')
	out = append(out, '.', '\t', si.Ref, '\t')

	// ALT
	if si.Smod.IsUnknown || si.Smod.IsBlock {
		out = append(out, '.')
	} else {
		out = appendVcfAlt(out, si.Smod.MaxGT, si.RefBase())
	}
	out = append(out, '\t')

	// QUAL
	if si.IsQual() {
		out = strconv.AppendInt(out, int64(si.Dgt.Genome.SnpQual), 10)
	} else {
		out = append(out, '.')
	}
	out = append(out, '\t')

	out = append(si.Smod.Filters.appendFilters(out), '\t')

	// INFO
	if si.Smod.IsBlock {
		out = append(out, "END="...)
		out = append(strconv.AppendInt(out, int64(agg.block.end()), 10), ';')
		out = append(out, agg.opt.BlockLabel...)
	} else {
		out = append(out, '.')
	}
	out = append(out, '\t')

	out = append(append(out, SiteFormat...), '\t')

	// SAMPLE
	out = append(append(out, siteGTLabel(si)...), ';')
	if si.Smod.IsGQX() {
		gqx := si.Smod.GQX
		if si.Smod.IsBlock {
			gqx = agg.block.minGQX
		}
		out = strconv.AppendInt(out, int64(gqx), 10)
	} else {
		out = append(out, '.')
	}
	out = append(out, '\n')

	agg.line = out
	agg.write(out)
}

// writeBlockSiteRecord writes and empties the pending block, if any.
func (agg *Aggregator) writeBlockSiteRecord() {
	if agg.block.count == 0 {
		return
	}
	agg.writeSiteRecord(&agg.block.record)
	agg.block.reset()
}

// writeIndelRecord writes one indel record. All alleles after the
// first are written as additional ALT alleles of the first.
func (agg *Aggregator) writeIndelRecord(alleles []*IndelCall) {
	// blocks must not extend past the start of an indel record
	agg.writeBlockSiteRecord()

	ii := alleles[0]
	out := append(agg.line[:0], agg.chrom...)
	out = append(out, '\t')
	out = append(strconv.AppendInt(out, int64(ii.Pos), 10), '\t')
	out = append(out, '.', '\t')
	out = append(append(out, ii.Iri.VcfRefSeq...), '\t')

	for i, allele := range alleles {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, allele.Iri.VcfIndelSeq...)
	}
	out = append(out, '\t')

	out = append(strconv.AppendInt(out, int64(ii.Dindel.IndelQual), 10), '\t')

	out = append(ii.Imod.Filters.appendFilters(out), '\t')

	out = append(out, "CIGAR="...)
	for i, allele := range alleles {
		if i > 0 {
			out = append(out, ',')
		}
		out = allele.Imod.Cigar.appendTo(out)
	}
	out = append(out, '\t')

	out = append(append(out, IndelFormat...), '\t')

	out = append(append(out, indelGTLabel(ii)...), ':')
	out = append(strconv.AppendInt(out, int64(ii.Imod.GQX), 10), '\n')

	agg.line = out
	agg.write(out)
}
