package calls

import (
	"sort"

	"github.com/exascience/elgvcf/gvcf"
	"github.com/exascience/elgvcf/utils"
)

// An Indel is an indel call as it is passed to gvcf.Aggregator.AddIndel.
type Indel struct {
	Pos    int32
	Key    gvcf.IndelKey
	Dindel gvcf.DiploidIndel
	Iri    gvcf.IndelReportInfo
	Isri   gvcf.IndelSampleReportInfo
}

// A Contig holds the site and indel calls of one contig, each in
// position order.
type Contig struct {
	Name   utils.Symbol
	Sites  []gvcf.SiteCall
	Indels []Indel
}

// Calls holds the calls of all contigs in a call file, in file order.
type Calls struct {
	Contigs []*Contig
	index   map[utils.Symbol]*Contig
}

// NewCalls allocates and initializes an empty Calls.
func NewCalls() *Calls {
	return &Calls{index: make(map[utils.Symbol]*Contig)}
}

// Contig returns the calls for the given contig name, or nil.
func (calls *Calls) Contig(name string) *Contig {
	return calls.index[utils.Intern(name)]
}

func (calls *Calls) contig(name utils.Symbol) *Contig {
	if contig, ok := calls.index[name]; ok {
		return contig
	}
	contig := &Contig{Name: name}
	calls.Contigs = append(calls.Contigs, contig)
	calls.index[name] = contig
	return contig
}

// End returns the position after the last call of the contig.
func (contig *Contig) End() (end int32) {
	if n := len(contig.Sites); n > 0 {
		end = contig.Sites[n-1].Pos + 1
	}
	for _, indel := range contig.Indels {
		if right := indel.Key.RightPos(); right > end {
			end = right
		}
	}
	return end
}

func (contig *Contig) sitesIn(r gvcf.Range) []gvcf.SiteCall {
	sites := contig.Sites
	begin := sort.Search(len(sites), func(i int) bool { return sites[i].Pos >= r.Begin })
	end := sort.Search(len(sites), func(i int) bool { return sites[i].Pos > r.End })
	return sites[begin:end]
}

func (contig *Contig) indelsIn(r gvcf.Range) []Indel {
	indels := contig.Indels
	begin := sort.Search(len(indels), func(i int) bool { return indels[i].Pos >= r.Begin })
	end := sort.Search(len(indels), func(i int) bool { return indels[i].Pos > r.End })
	return indels[begin:end]
}

// Replay feeds the calls of the contig that start inside r to agg in
// position order, and then finalizes agg. At equal positions, indels
// are added before sites. The stored calls are not modified.
func (contig *Contig) Replay(agg *gvcf.Aggregator, r gvcf.Range) error {
	sites, indels := contig.sitesIn(r), contig.indelsIn(r)
	var site gvcf.SiteCall
	for i, j := 0, 0; i < len(sites) || j < len(indels); {
		var err error
		if j < len(indels) && (i == len(sites) || indels[j].Pos <= sites[i].Pos) {
			indel := &indels[j]
			err = agg.AddIndel(indel.Pos, indel.Key, indel.Dindel, indel.Iri, indel.Isri)
			j++
		} else {
			filters := site.Smod.Filters
			site = sites[i]
			site.Smod.Filters = filters
			err = agg.AddSite(&site)
			i++
		}
		if err != nil {
			return err
		}
	}
	return agg.Finalize()
}
