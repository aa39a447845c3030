package calls

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/exascience/elgvcf/gvcf"
	"github.com/exascience/elgvcf/utils"
)

// Record type tags of a call file.
const (
	SiteTag  = "S"
	IndelTag = "I"
)

func getLine(reader *bufio.Reader) (line string, ok bool, err error) {
	line, err = reader.ReadString('\n')
	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		if line == "" {
			return "", false, nil
		}
		err = nil
	default:
		return "", false, err
	}
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	return line, true, nil
}

func parseSite(sc *StringScanner, site *gvcf.SiteCall) {
	site.Ref = sc.ParseBase("reference base")
	site.NUsedCalls = sc.ParseInt("used base calls")
	site.NUnusedCalls = sc.ParseInt("unused base calls")
	site.KnownCounts = sc.ParseCounts("base counts")
	site.Dgt.IsSNP = sc.ParseBool("SNP flag")
	site.Dgt.Genome.MaxGT = sc.ParseGenotype("genome genotype")
	site.Dgt.Genome.MaxGTQual = sc.ParseInt("genome genotype quality")
	site.Dgt.Genome.SnpQual = sc.ParseInt("SNP quality")
	site.Dgt.Poly.MaxGT = sc.ParseGenotype("polymorphic genotype")
	site.Dgt.Poly.MaxGTQual = sc.ParseInt("polymorphic genotype quality")
	sc.ParseEnd()
}

func parseIndel(sc *StringScanner, indel *Indel) {
	indel.Key.Pos = indel.Pos
	indel.Key.InsertLength = sc.ParseInt32("insertion length")
	indel.Key.DeleteLength = sc.ParseInt32("deletion length")
	indel.Key.IsBreakpoint = sc.ParseBool("breakpoint flag")
	indel.Dindel.MaxGT = sc.ParseIndelGenotype("indel genotype")
	indel.Dindel.IndelQual = sc.ParseInt("indel quality")
	indel.Dindel.MaxGTQual = sc.ParseInt("indel genotype quality")
	indel.Iri.VcfRefSeq = sc.ParseField("VCF reference sequence")
	indel.Iri.VcfIndelSeq = sc.ParseField("VCF indel sequence")
	indel.Isri.Depth = sc.ParseInt("depth")
	sc.ParseEnd()
	if sc.err == nil && (indel.Key.InsertLength < 0 || indel.Key.DeleteLength < 0) {
		sc.err = errors.New("negative indel length")
	}
}

// Parse reads a call file. The name is only used in error messages.
//
// Calls are grouped per contig in order of first appearance. Within a
// contig, sites must be in strictly increasing and indels in
// non-decreasing position order.
func Parse(reader *bufio.Reader, name string) (*Calls, error) {
	calls := NewCalls()
	var (
		sc     StringScanner
		contig *Contig
	)
	for lineNr := 1; ; lineNr++ {
		line, ok, err := getLine(reader)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", name, err)
		}
		if !ok {
			return calls, nil
		}
		if line == "" || line[0] == '#' {
			continue
		}
		sc.Reset(line)
		tag := sc.ParseField("record type")
		chrom := sc.ParseField("contig")
		pos := sc.ParseInt32("position")
		if sc.err == nil && pos < 1 {
			sc.err = fmt.Errorf("invalid position %v", pos)
		}
		if sc.err == nil && (contig == nil || *contig.Name != chrom) {
			contig = calls.contig(utils.Intern(chrom))
		}
		switch {
		case sc.err != nil:
		case tag == SiteTag:
			site := gvcf.SiteCall{Pos: pos - 1}
			parseSite(&sc, &site)
			if n := len(contig.Sites); sc.err == nil && n > 0 && contig.Sites[n-1].Pos >= site.Pos {
				sc.err = fmt.Errorf("site at %v on %v is out of order", pos, chrom)
			}
			if sc.err == nil {
				contig.Sites = append(contig.Sites, site)
			}
		case tag == IndelTag:
			indel := Indel{Pos: pos - 1}
			parseIndel(&sc, &indel)
			if n := len(contig.Indels); sc.err == nil && n > 0 && contig.Indels[n-1].Pos > indel.Pos {
				sc.err = fmt.Errorf("indel at %v on %v is out of order", pos, chrom)
			}
			if sc.err == nil {
				contig.Indels = append(contig.Indels, indel)
			}
		default:
			sc.err = fmt.Errorf("unknown record type %q", tag)
		}
		if sc.err != nil {
			return nil, fmt.Errorf("%v:%v: %w", name, lineNr, sc.err)
		}
	}
}

// Open reads a call file, which may be gzip or BGZF compressed.
func Open(filename string) (calls *Calls, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	reader, err := utils.HandleGzip(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filename, err)
	}
	return Parse(bufio.NewReader(reader), filename)
}
