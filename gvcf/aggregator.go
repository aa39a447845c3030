package gvcf

import (
	"io"
	"log"
	"math"
)

// Aggregator turns a position-ordered stream of site and indel calls
// for one contig into gVCF records. Runs of compatible non-variant
// sites are compressed into blocks, gaps in the site stream are
// filled, and sites covered by indels are reconciled with them.
//
// An Aggregator is not safe for concurrent use. Use one Aggregator per
// contig range.
type Aggregator struct {
	opt         *Options
	chrom       string
	reportRange Range
	ref         Reference
	out         io.Writer

	// next position for which no site has been seen yet
	headPos int32

	// end of the open indel group, valid if indels is not empty
	indelEndPos  int32
	lastIndelPos int32

	indels   indelBuffer
	sites    siteBuffer
	block    blockRecord
	resolver overlapResolver

	emptySite SiteCall
	line      []byte

	err         error
	isFinalized bool
}

// NewAggregator creates an aggregator for the given contig range.
// Output lines are written to out.
func NewAggregator(opt *Options, chrom string, reportRange Range, ref Reference, out io.Writer) *Aggregator {
	if opt == nil {
		log.Panic("missing gVCF options")
	}
	if ref == nil {
		log.Panic("missing reference sequence")
	}
	if out == nil {
		log.Panic("missing gVCF output")
	}
	if reportRange.End < reportRange.Begin {
		log.Panicf("invalid report range [%v, %v] on %v", reportRange.Begin, reportRange.End, chrom)
	}
	return &Aggregator{
		opt:          opt,
		chrom:        chrom,
		reportRange:  reportRange,
		ref:          ref,
		out:          out,
		headPos:      reportRange.Begin,
		lastIndelPos: math.MinInt32,
		line:         make([]byte, 0, 256),
	}
}

// Err returns the first error encountered while writing output.
func (agg *Aggregator) Err() error {
	return agg.err
}

func (agg *Aggregator) checkOpen() {
	if agg.isFinalized {
		log.Panicf("gVCF aggregator for %v used after Finalize", agg.chrom)
	}
}

// refBase returns the upper-case reference base at pos, or N.
func (agg *Aggregator) refBase(pos int32) byte {
	s := agg.ref.Substring(pos, 1)
	if len(s) == 0 {
		return UnknownBase
	}
	base := s[0]
	if 'a' <= base && base <= 'z' {
		base -= 'a' - 'A'
	}
	if BaseID(base) < 0 {
		return UnknownBase
	}
	return base
}

// getEmptySite returns a site without observations at pos. The
// returned site is only valid until the next call.
func (agg *Aggregator) getEmptySite(pos int32) *SiteCall {
	si := &agg.emptySite
	filters := si.Smod.Filters
	*si = SiteCall{Pos: pos, Ref: agg.refBase(pos)}
	si.Smod.Filters = filters
	if ref := si.RefBase(); ref >= 0 {
		si.Dgt.Genome.MaxGT = HomGenotype(ref)
		si.Dgt.Poly.MaxGT = si.Dgt.Genome.MaxGT
	}
	addSiteModifiers(agg.opt, si)
	return si
}

// skipToPos fills the gap between the head position and target with
// empty sites. Once no indel group is open, the rest of the gap is
// folded into the pending block in one step.
func (agg *Aggregator) skipToPos(target int32) {
	for agg.headPos < target {
		agg.addSiteInternal(agg.getEmptySite(agg.headPos))
		if agg.indels.size != 0 {
			continue
		}
		if agg.block.count == 0 {
			log.Panicf("empty site at %v on %v did not start a block", agg.headPos-1, agg.chrom)
		}
		agg.block.count += target - agg.headPos
		agg.headPos = target
	}
}

// AddSite adds the next site call. Sites must be added in strictly
// increasing position order. The annotation of si is computed in
// place; si can be reused by the caller after AddSite returns.
func (agg *Aggregator) AddSite(si *SiteCall) error {
	agg.checkOpen()
	if agg.err != nil {
		return agg.err
	}
	if si.Pos < agg.headPos {
		log.Panicf("site at %v on %v added out of order, expected position %v or later", si.Pos, agg.chrom, agg.headPos)
	}
	agg.skipToPos(si.Pos)
	addSiteModifiers(agg.opt, si)
	agg.addSiteInternal(si)
	return agg.err
}

func (agg *Aggregator) addSiteInternal(si *SiteCall) {
	agg.headPos = si.Pos + 1

	if agg.indels.size != 0 {
		if si.Pos < agg.indelEndPos {
			agg.sites.add(si)
			return
		}
		agg.processOverlaps()
	}
	agg.queueSiteRecord(si)
}

// queueSiteRecord sends a site either into the pending block or
// directly to the output.
func (agg *Aggregator) queueSiteRecord(si *SiteCall) {
	if !isSiteRecordBlockable(agg.opt, si) {
		agg.writeBlockSiteRecord()
		agg.writeSiteRecord(si)
		return
	}
	if !agg.block.test(si) {
		agg.writeBlockSiteRecord()
	}
	agg.block.join(si)
}

// AddIndel adds the next indel call. Indels must be added in
// non-decreasing position order, and before any site at or after pos.
// Breakpoints and calls without an indel genotype are ignored.
func (agg *Aggregator) AddIndel(pos int32, ik IndelKey, dindel DiploidIndel, iri IndelReportInfo, isri IndelSampleReportInfo) error {
	agg.checkOpen()
	if agg.err != nil {
		return agg.err
	}
	if ik.IsBreakpoint || dindel.MaxGT == NoIndel {
		return nil
	}
	if pos < agg.lastIndelPos {
		log.Panicf("indel at %v on %v added out of order, previous indel at %v", pos, agg.chrom, agg.lastIndelPos)
	}
	if pos < agg.headPos {
		log.Panicf("indel at %v on %v added after the site at %v", pos, agg.chrom, agg.headPos-1)
	}
	agg.lastIndelPos = pos

	agg.skipToPos(pos)

	if agg.indels.size != 0 {
		if pos <= agg.indelEndPos {
			agg.indels.add().init(pos, ik, dindel, iri, isri)
			agg.indelEndPos = maxInt32(agg.indelEndPos, ik.RightPos())
			return agg.err
		}
		agg.processOverlaps()
	}
	agg.indels.add().init(pos, ik, dindel, iri, isri)
	agg.indelEndPos = ik.RightPos()
	return agg.err
}

// Finalize fills the rest of the report range and writes everything
// still buffered. The aggregator cannot be used afterwards.
func (agg *Aggregator) Finalize() error {
	agg.checkOpen()
	agg.isFinalized = true
	if agg.err != nil {
		return agg.err
	}
	agg.skipToPos(agg.reportRange.End + 1)
	agg.processOverlaps()
	agg.writeBlockSiteRecord()
	return agg.err
}
