package gvcf

import (
	"log"

	"github.com/exascience/elgvcf/internal"
)

// A resolvedGroup is an indel group after overlap processing. It
// describes the indel records the group writes, in position order.
type resolvedGroup interface {
	recordCount() int
	// record returns the alleles of the i-th record; the first allele
	// carries the annotation of the whole record.
	record(i int) []*IndelCall
}

// A ploidyGroup is a resolved group that knows how many haplotypes
// cover each reference position in its span. Conflicting groups are
// deliberately not ploidyGroups.
type ploidyGroup interface {
	resolvedGroup
	representative() *IndelCall
	ploidyAt(offset int32) int
}

// singleIndel is a group of one indel.
type singleIndel struct {
	alleles [1]*IndelCall
	ploidy  []int
}

func (g *singleIndel) recordCount() int { return 1 }
func (g *singleIndel) record(int) []*IndelCall { return g.alleles[:] }
func (g *singleIndel) representative() *IndelCall { return g.alleles[0] }
func (g *singleIndel) ploidyAt(offset int32) int { return lookupPloidy(g.ploidy, offset) }

// overlapPair is a group of two overlapping heterozygous indels,
// written as a single record with two ALT alleles.
type overlapPair struct {
	alleles [2]*IndelCall
	ploidy  []int
}

func (g *overlapPair) recordCount() int { return 1 }
func (g *overlapPair) record(int) []*IndelCall { return g.alleles[:] }
func (g *overlapPair) representative() *IndelCall { return g.alleles[0] }
func (g *overlapPair) ploidyAt(offset int32) int { return lookupPloidy(g.ploidy, offset) }

// indelConflict is a group of overlapping indels that cannot be
// merged. Every indel is written separately.
type indelConflict struct {
	indels []*IndelCall
}

func (g *indelConflict) recordCount() int { return len(g.indels) }
func (g *indelConflict) record(i int) []*IndelCall { return g.indels[i : i+1] }

func lookupPloidy(ploidy []int, offset int32) int {
	if offset < 0 || int(offset) >= len(ploidy) {
		log.Panicf("site offset %v outside of indel group span %v", offset, len(ploidy))
	}
	return ploidy[offset]
}

// resetPloidy returns a zeroed ploidy slice of the given length,
// reusing storage.
func resetPloidy(ploidy []int, length int32) []int {
	if cap(ploidy) < int(length) {
		return make([]int, length)
	}
	ploidy = ploidy[:length]
	for i := range ploidy {
		ploidy[i] = 0
	}
	return ploidy
}

// overlapResolver keeps the storage of resolved groups across groups.
type overlapResolver struct {
	single   singleIndel
	pair     overlapPair
	conflict indelConflict
	refPath  Path
}

func isSimpleIndelOverlap(indels []IndelCall) bool {
	return len(indels) == 2 &&
		indels[0].Dindel.MaxGT == Het &&
		indels[1].Dindel.MaxGT == Het
}

// resolveIndelGroup classifies the open indel group and computes the
// paths, qualities, and filters of its indels.
func (agg *Aggregator) resolveIndelGroup() resolvedGroup {
	indels := agg.indels.active()
	switch {
	case len(indels) == 1:
		return agg.modifySingleIndelRecord(&indels[0])
	case isSimpleIndelOverlap(indels):
		return agg.modifyOverlapIndelRecord(indels)
	default:
		return agg.modifyConflictIndelRecord(indels)
	}
}

func (agg *Aggregator) modifySingleIndelRecord(ii *IndelCall) *singleIndel {
	ii.Imod.Cigar = appendHapPath(ii.Imod.Cigar[:0], ii.Key, 1, 0)
	addIndelModifiers(agg.opt, ii)

	g := &agg.resolver.single
	g.alleles[0] = ii
	span := agg.indelEndPos - ii.Pos
	g.ploidy = resetPloidy(g.ploidy, span)
	addPathToPloidy(ii.Imod.Cigar, g.ploidy)
	if ii.Dindel.MaxGT == Hom {
		addPathToPloidy(ii.Imod.Cigar, g.ploidy)
	} else {
		// the other haplotype is the reference
		agg.resolver.refPath = append(agg.resolver.refPath[:0], PathSegment{span + 1, Match})
		addPathToPloidy(agg.resolver.refPath, g.ploidy)
	}
	return g
}

func (agg *Aggregator) modifyOverlapIndelRecord(indels []IndelCall) *overlapPair {
	if len(indels) != 2 {
		log.Panicf("cannot merge an overlapping group of %v indels", len(indels))
	}

	// all shared information goes into the first indel
	first := &indels[0]
	first.Imod.IsOverlap = true

	// extend back by one base for the VCF anchor
	beginPos := first.Pos - 1
	first.Iri.VcfRefSeq = agg.ref.Substring(beginPos, agg.indelEndPos-beginPos)

	g := &agg.resolver.pair
	g.ploidy = resetPloidy(g.ploidy, agg.indelEndPos-first.Pos)

	for hap := range indels {
		ii := &indels[hap]
		if hap > 0 {
			first.Dindel.IndelQual = minInt(first.Dindel.IndelQual, ii.Dindel.IndelQual)
			first.Dindel.MaxGTQual = minInt(first.Dindel.MaxGTQual, ii.Dindel.MaxGTQual)
		}

		// the indel sequence already starts with its own anchor base
		leadingSeq := agg.ref.Substring(beginPos, ii.Pos-beginPos-1)
		trailLength := agg.indelEndPos - ii.Key.RightPos()
		trailingSeq := agg.ref.Substring(agg.indelEndPos-trailLength, trailLength)

		ii.Iri.VcfIndelSeq = leadingSeq + ii.Iri.VcfIndelSeq + trailingSeq
		ii.Imod.Cigar = appendHapPath(ii.Imod.Cigar[:0], ii.Key, int32(len(leadingSeq))+1, int32(len(trailingSeq)))

		addPathToPloidy(ii.Imod.Cigar, g.ploidy)
		g.alleles[hap] = ii
	}

	addIndelModifiers(agg.opt, first)
	return g
}

func (agg *Aggregator) modifyConflictIndelRecord(indels []IndelCall) *indelConflict {
	if len(indels) < 2 {
		log.Panicf("an indel conflict needs at least two indels, got %v", len(indels))
	}
	g := &agg.resolver.conflict
	g.indels = g.indels[:0]
	for i := range indels {
		ii := &indels[i]
		ii.Imod.Cigar = appendHapPath(ii.Imod.Cigar[:0], ii.Key, 1, 0)
		ii.Imod.Filters.Set(IndelConflict)
		addIndelModifiers(agg.opt, ii)
		g.indels = append(g.indels, ii)
	}
	return g
}

// reconcileSites makes the buffered sites consistent with the indels
// that cover them.
func (agg *Aggregator) reconcileSites(group resolvedGroup) {
	sites := agg.sites.active()
	switch g := group.(type) {
	case ploidyGroup:
		ii := g.representative()
		for i := range sites {
			si := &sites[i]
			offset := si.Pos - ii.Pos
			if offset < 0 {
				log.Panicf("site at position %v precedes indel group at %v", si.Pos, ii.Pos)
			}
			modifyIndelOverlapSite(agg.opt, ii, g.ploidyAt(offset), si)
		}
	case *indelConflict:
		for i := range sites {
			modifyIndelConflictSite(&sites[i])
		}
	default:
		log.Panicf("unknown indel group type %T", group)
	}
}

// writeGroup writes the indel records and the buffered sites of a
// resolved group, merged by position. An indel is written before a
// site at the same position.
func (agg *Aggregator) writeGroup(group resolvedGroup) {
	sites := agg.sites.active()
	nRecords := group.recordCount()
	recordIndex, siteIndex := 0, 0
	for recordIndex < nRecords || siteIndex < len(sites) {
		if recordIndex < nRecords &&
			(siteIndex == len(sites) || group.record(recordIndex)[0].Pos <= sites[siteIndex].Pos) {
			agg.writeIndelRecord(group.record(recordIndex))
			recordIndex++
		} else {
			agg.queueSiteRecord(&sites[siteIndex])
			siteIndex++
		}
	}
}

// processOverlaps resolves and writes the open indel group together
// with the sites it covers, then empties both buffers.
func (agg *Aggregator) processOverlaps() {
	if agg.indels.size == 0 {
		return
	}
	if internal.PedanticMode {
		agg.checkBuffers()
	}
	group := agg.resolveIndelGroup()
	if internal.PedanticMode {
		checkPaths(group)
	}
	agg.reconcileSites(group)
	agg.writeGroup(group)
	agg.indels.reset()
	agg.sites.reset()
}

// checkBuffers verifies the buffer invariants.
func (agg *Aggregator) checkBuffers() {
	indels := agg.indels.active()
	end := indels[0].Key.RightPos()
	for i := 1; i < len(indels); i++ {
		if indels[i].Pos > end {
			log.Panicf("indel at %v does not overlap indel group ending at %v", indels[i].Pos, end)
		}
		end = maxInt32(end, indels[i].Key.RightPos())
	}
	if end != agg.indelEndPos {
		log.Panicf("indel group end %v does not match recorded end %v", end, agg.indelEndPos)
	}
	for _, si := range agg.sites.active() {
		if si.Pos < indels[0].Pos || si.Pos >= agg.indelEndPos {
			log.Panicf("buffered site at %v outside of indel group [%v, %v)", si.Pos, indels[0].Pos, agg.indelEndPos)
		}
	}
}

// checkPaths verifies that the alignment path of every allele spans
// the reference sequence of its record.
func checkPaths(group resolvedGroup) {
	for i := 0; i < group.recordCount(); i++ {
		alleles := group.record(i)
		refLength := int32(len(alleles[0].Iri.VcfRefSeq))
		for _, ii := range alleles {
			if length := ii.Imod.Cigar.referenceLength(); length != refLength {
				log.Panicf("alignment path %v of indel at %v spans %v reference bases, expected %v", ii.Imod.Cigar, ii.Pos, length, refLength)
			}
		}
	}
}
