package gvcf

// blockRecord accumulates a run of consecutive non-variant sites that
// are written as a single record. The first member of the run is kept
// as the representative record of the whole block.
type blockRecord struct {
	record SiteCall
	count  int32
	minGQX int
}

// isSiteRecordBlockable tells whether a site may be considered for
// block compression at all.
func isSiteRecordBlockable(opt *Options, si *SiteCall) bool {
	if si.Dgt.IsSNP {
		return false
	}
	if ref := si.RefBase(); ref >= 0 && si.NUsedCalls > 0 {
		refFraction := float64(si.KnownCounts[ref]) / float64(si.NUsedCalls)
		if refFraction+opt.BlockMaxNonref <= 1 {
			return false
		}
	}
	return true
}

// test tells whether si can extend the block.
func (block *blockRecord) test(si *SiteCall) bool {
	if block.count == 0 {
		return true
	}
	if block.record.Pos+block.count != si.Pos {
		return false
	}
	bmod, smod := &block.record.Smod, &si.Smod
	if bmod.IsUnknown != smod.IsUnknown ||
		bmod.IsUsedCovered != smod.IsUsedCovered ||
		bmod.IsCovered != smod.IsCovered ||
		bmod.IsZeroPloidy != smod.IsZeroPloidy ||
		bmod.ModifiedGT != smod.ModifiedGT {
		return false
	}
	if siteGTLabel(&block.record) != siteGTLabel(si) {
		return false
	}
	return bmod.Filters.Equal(smod.Filters)
}

// join extends the block by one position.
func (block *blockRecord) join(si *SiteCall) {
	if block.count == 0 {
		block.record.assign(si)
		block.record.Smod.IsBlock = true
		block.minGQX = si.Smod.GQX
	} else {
		block.minGQX = minInt(block.minGQX, si.Smod.GQX)
	}
	block.count++
}

// end returns the 1-based position of the last site in the block.
func (block *blockRecord) end() int32 {
	return block.record.Pos + block.count
}

func (block *blockRecord) reset() {
	block.count = 0
	block.minGQX = 0
}
