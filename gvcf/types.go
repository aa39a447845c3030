package gvcf

// Base identifiers, in the order used for ALT alleles.
const (
	BaseA = iota
	BaseC
	BaseG
	BaseT
	NBase
)

// UnknownBase is the reference base of positions without a known
// reference.
const UnknownBase = 'N'

var baseIDs = [256]int8{}

var idToBase = [NBase]byte{'A', 'C', 'G', 'T'}

func init() {
	for i := range baseIDs {
		baseIDs[i] = -1
	}
	for id, b := range idToBase {
		baseIDs[b] = int8(id)
		baseIDs[b+'a'-'A'] = int8(id)
	}
}

// BaseID returns the identifier of the given base, or -1 for
// anything other than A, C, G, and T.
func BaseID(base byte) int {
	return int(baseIDs[base])
}

// Genotype is one of the ten unphased diploid genotypes. The four
// homozygous genotypes come first, so that their values coincide with
// the identifiers of their bases.
type Genotype uint8

// The diploid genotypes.
const (
	AA Genotype = iota
	CC
	GG
	TT
	AC
	AG
	AT
	CG
	CT
	GT
	NGenotype
)

var genotypeAlleles = [NGenotype][2]int{
	{BaseA, BaseA}, {BaseC, BaseC}, {BaseG, BaseG}, {BaseT, BaseT},
	{BaseA, BaseC}, {BaseA, BaseG}, {BaseA, BaseT},
	{BaseC, BaseG}, {BaseC, BaseT}, {BaseG, BaseT},
}

var genotypeNames = [NGenotype]string{"AA", "CC", "GG", "TT", "AC", "AG", "AT", "CG", "CT", "GT"}

// HomGenotype returns the homozygous genotype of the given base.
func HomGenotype(base int) Genotype {
	return Genotype(base)
}

// ParseGenotype returns the genotype for a two-letter name such as
// "AC". The letters may appear in either order.
func ParseGenotype(name string) (Genotype, bool) {
	if len(name) != 2 {
		return 0, false
	}
	b1, b2 := BaseID(name[0]), BaseID(name[1])
	if b1 < 0 || b2 < 0 {
		return 0, false
	}
	if b1 > b2 {
		b1, b2 = b2, b1
	}
	for gt, alleles := range genotypeAlleles {
		if alleles[0] == b1 && alleles[1] == b2 {
			return Genotype(gt), true
		}
	}
	return 0, false
}

func (gt Genotype) String() string {
	if gt >= NGenotype {
		return "??"
	}
	return genotypeNames[gt]
}

// IsHet tells whether the two alleles of the genotype differ.
func (gt Genotype) IsHet() bool {
	return genotypeAlleles[gt][0] != genotypeAlleles[gt][1]
}

// Contains tells whether the given base is one of the alleles of the
// genotype.
func (gt Genotype) Contains(base int) bool {
	alleles := genotypeAlleles[gt]
	return alleles[0] == base || alleles[1] == base
}

// GenotypeResult is one genotype-likelihood result for a site.
type GenotypeResult struct {
	MaxGT     Genotype
	MaxGTQual int
	SnpQual   int
}

// DiploidGenotype is the upstream genotyping result for a site. The
// genome result is the one reported; the poly result is only used to
// detect disagreement.
type DiploidGenotype struct {
	IsSNP  bool
	Genome GenotypeResult
	Poly   GenotypeResult
}

// ModifiedGT replaces the displayed genotype of a site when an
// overlapping indel changes its ploidy.
type ModifiedGT uint8

// The possible modified genotypes.
const (
	ModifiedNone ModifiedGT = iota
	ModifiedZero
	ModifiedOne
	ModifiedUnknown
)

// SiteAnnotation holds everything derived from a SiteCall on its way
// to the output.
type SiteAnnotation struct {
	MaxGT         Genotype
	GQX           int
	Filters       FilterSet
	IsUnknown     bool
	IsUsedCovered bool
	IsCovered     bool
	IsBlock       bool
	IsZeroPloidy  bool
	ModifiedGT    ModifiedGT
}

// IsGQX tells whether the site reports a GQX value.
func (smod *SiteAnnotation) IsGQX() bool {
	return !smod.IsUnknown && smod.IsUsedCovered && !smod.IsZeroPloidy
}

// SiteCall is a single-base genotype call.
type SiteCall struct {
	Pos          int32
	Ref          byte
	NUsedCalls   int
	NUnusedCalls int
	KnownCounts  [NBase]int
	Dgt          DiploidGenotype
	Smod         SiteAnnotation
}

// RefBase returns the base identifier of the reference, or -1 when
// the reference is unknown.
func (si *SiteCall) RefBase() int {
	return BaseID(si.Ref)
}

// IsQual tells whether the site reports a QUAL value.
func (si *SiteCall) IsQual() bool {
	return si.Smod.IsGQX() && !si.Smod.IsBlock && si.Dgt.IsSNP
}

// assign copies src into si, reusing the filter storage of si.
func (si *SiteCall) assign(src *SiteCall) {
	filters := si.Smod.Filters
	*si = *src
	si.Smod.Filters = filters
	si.Smod.Filters.assign(src.Smod.Filters)
}

// IndelGenotype is the diploid genotype of an indel call.
type IndelGenotype uint8

// The possible indel genotypes.
const (
	NoIndel IndelGenotype = iota
	Het
	Hom
)

func (gt IndelGenotype) String() string {
	switch gt {
	case NoIndel:
		return "noindel"
	case Het:
		return "het"
	case Hom:
		return "hom"
	default:
		return "?"
	}
}

// IndelKey identifies an indel by its left position and shape.
type IndelKey struct {
	Pos          int32
	InsertLength int32
	DeleteLength int32
	IsBreakpoint bool
}

// RightPos is the position right after the deleted reference bases.
func (ik IndelKey) RightPos() int32 {
	return ik.Pos + ik.DeleteLength
}

// DiploidIndel is the upstream genotyping result for an indel.
type DiploidIndel struct {
	MaxGT     IndelGenotype
	IndelQual int
	MaxGTQual int
}

// IndelReportInfo holds the VCF texts of an indel, both including the
// leading anchor base.
type IndelReportInfo struct {
	VcfRefSeq   string
	VcfIndelSeq string
}

// IndelSampleReportInfo holds the sample statistics of an indel.
type IndelSampleReportInfo struct {
	Depth int
}

// IndelAnnotation holds everything derived from an IndelCall on its
// way to the output.
type IndelAnnotation struct {
	Cigar     Path
	Filters   FilterSet
	GQX       int
	IsOverlap bool
}

// IndelCall is an insertion/deletion genotype call.
type IndelCall struct {
	Pos    int32
	Key    IndelKey
	Dindel DiploidIndel
	Iri    IndelReportInfo
	Isri   IndelSampleReportInfo
	Imod   IndelAnnotation
}

// init (re)initializes a buffer slot, keeping its path and filter
// storage.
func (ii *IndelCall) init(pos int32, ik IndelKey, dindel DiploidIndel, iri IndelReportInfo, isri IndelSampleReportInfo) {
	ii.Pos = pos
	ii.Key = ik
	ii.Dindel = dindel
	ii.Iri = iri
	ii.Isri = isri
	ii.Imod.Cigar = ii.Imod.Cigar[:0]
	ii.Imod.Filters.Reset()
	ii.Imod.GQX = 0
	ii.Imod.IsOverlap = false
}

// Range is an inclusive range of 0-based positions.
type Range struct {
	Begin, End int32
}

// Reference gives access to the reference sequence of one contig.
type Reference interface {
	// Substring returns length bases starting at 0-based position start.
	Substring(start, length int32) string
}
