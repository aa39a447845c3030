package gvcf

import "log"

func setSiteGT(result *GenotypeResult, smod *SiteAnnotation) {
	smod.MaxGT = result.MaxGT
	smod.GQX = result.MaxGTQual
}

func setSiteFilters(opt *Options, si *SiteCall) {
	if opt.IsMinGQX && si.Smod.GQX < opt.MinGQX {
		si.Smod.Filters.Set(LowGQX)
	}
	if opt.IsMaxDepth && si.NUsedCalls+si.NUnusedCalls > opt.MaxDepth {
		si.Smod.Filters.Set(HighDepth)
	}
}

// addSiteModifiers computes the annotation of a site from its upstream
// genotyping result.
func addSiteModifiers(opt *Options, si *SiteCall) {
	smod := &si.Smod
	filters := smod.Filters
	*smod = SiteAnnotation{Filters: filters}
	smod.Filters.Reset()

	smod.IsUnknown = si.Ref == UnknownBase
	smod.IsUsedCovered = si.NUsedCalls != 0
	smod.IsCovered = smod.IsUsedCovered || si.NUnusedCalls != 0

	switch {
	case smod.IsUnknown:
		smod.GQX = 0
		smod.MaxGT = AA
	case si.Dgt.Genome.MaxGT != si.Dgt.Poly.MaxGT:
		// the genome genotype is reported, but without confidence
		smod.GQX = 0
		smod.MaxGT = si.Dgt.Genome.MaxGT
	case si.Dgt.Genome.MaxGTQual < si.Dgt.Poly.MaxGTQual:
		setSiteGT(&si.Dgt.Genome, smod)
	default:
		setSiteGT(&si.Dgt.Poly, smod)
	}

	setSiteFilters(opt, si)
}

// addIndelModifiers computes GQX and filters of an indel.
func addIndelModifiers(opt *Options, ii *IndelCall) {
	ii.Imod.GQX = minInt(ii.Dindel.IndelQual, ii.Dindel.MaxGTQual)
	if opt.IsMinGQX && ii.Imod.GQX < opt.MinGQX {
		ii.Imod.Filters.Set(LowGQX)
	}
	if opt.IsMaxDepth && ii.Isri.Depth > opt.MaxDepth {
		ii.Imod.Filters.Set(HighDepth)
	}
}

// modifyIndelOverlapSite reinterprets a site covered by an indel group
// with the given ploidy at the site's position.
func modifyIndelOverlapSite(opt *Options, ii *IndelCall, ploidy int, si *SiteCall) {
	si.Smod.Filters.Intersect(ii.Imod.Filters)

	switch ploidy {
	case 1:
		si.Dgt.Genome.SnpQual = minInt(si.Dgt.Genome.SnpQual, ii.Dindel.IndelQual)
		si.Smod.GQX = minInt(si.Smod.GQX, ii.Dindel.MaxGTQual)
		if si.Smod.MaxGT.IsHet() {
			si.Smod.Filters.Set(SiteConflict)
			si.Smod.ModifiedGT = ModifiedUnknown
		} else if ref := si.RefBase(); ref >= 0 && si.Smod.MaxGT == HomGenotype(ref) {
			si.Smod.ModifiedGT = ModifiedZero
		} else {
			si.Smod.ModifiedGT = ModifiedOne
		}
	case 0:
		si.Smod.ModifiedGT = ModifiedUnknown
		si.Smod.IsZeroPloidy = true
	default:
		log.Panicf("unexpected ploidy %v at position %v inside indel at %v", ploidy, si.Pos, ii.Pos)
	}

	setSiteFilters(opt, si)
}

func modifyIndelConflictSite(si *SiteCall) {
	si.Smod.Filters.Set(IndelConflict)
}

func minInt(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func maxInt32(x, y int32) int32 {
	if x > y {
		return x
	}
	return y
}
