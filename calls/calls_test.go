package calls

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/elgvcf/gvcf"
)

const testCalls = `# test calls
S	chr1	3	G	10	1	0,0,10,0	0	GG	60	0	GG	55
I	chr1	4	0	2	0	het	50	40	GTA	G	12
S	chr1	4	t	10	0	0,0,0,10	0	TT	60	0	TT	60
S	chr2	1	A	8	0	6,2,0,0	1	AC	35	40	AC	30
`

func parseString(t *testing.T, s string) (*Calls, error) {
	t.Helper()
	return Parse(bufio.NewReader(strings.NewReader(s)), "test.calls")
}

func TestParse(t *testing.T) {
	calls, err := parseString(t, testCalls)
	require.NoError(t, err)
	require.Len(t, calls.Contigs, 2)
	assert.Equal(t, "chr1", *calls.Contigs[0].Name)
	assert.Equal(t, "chr2", *calls.Contigs[1].Name)

	chr1 := calls.Contig("chr1")
	require.NotNil(t, chr1)
	require.Len(t, chr1.Sites, 2)
	site := chr1.Sites[0]
	assert.Equal(t, int32(2), site.Pos)
	assert.Equal(t, byte('G'), site.Ref)
	assert.Equal(t, 10, site.NUsedCalls)
	assert.Equal(t, 1, site.NUnusedCalls)
	assert.Equal(t, [gvcf.NBase]int{0, 0, 10, 0}, site.KnownCounts)
	assert.Equal(t, gvcf.GG, site.Dgt.Genome.MaxGT)
	assert.Equal(t, 55, site.Dgt.Poly.MaxGTQual)
	assert.Equal(t, byte('T'), chr1.Sites[1].Ref)

	require.Len(t, chr1.Indels, 1)
	assert.Equal(t, Indel{
		Pos:    3,
		Key:    gvcf.IndelKey{Pos: 3, DeleteLength: 2},
		Dindel: gvcf.DiploidIndel{MaxGT: gvcf.Het, IndelQual: 50, MaxGTQual: 40},
		Iri:    gvcf.IndelReportInfo{VcfRefSeq: "GTA", VcfIndelSeq: "G"},
		Isri:   gvcf.IndelSampleReportInfo{Depth: 12},
	}, chr1.Indels[0])
	assert.Equal(t, int32(5), chr1.End())

	chr2 := calls.Contig("chr2")
	require.NotNil(t, chr2)
	assert.True(t, chr2.Sites[0].Dgt.IsSNP)
	assert.Nil(t, calls.Contig("chr3"))
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		name, input, message string
	}{
		{"unknown type", "X\tchr1\t1\n", "unknown record type"},
		{"missing field", "S\tchr1\t3\tG\t10\n", "missing unused base calls"},
		{"extra field", "S\tchr1\t3\tG\t10\t1\t0,0,10,0\t0\tGG\t60\t0\tGG\t55\tx\n", "extra fields"},
		{"bad genotype", "S\tchr1\t3\tG\t10\t1\t0,0,10,0\t0\tGX\t60\t0\tGG\t55\n", "genome genotype"},
		{"bad counts", "S\tchr1\t3\tG\t10\t1\t0,10,0\t0\tGG\t60\t0\tGG\t55\n", "base counts"},
		{"bad position", "S\tchr1\t0\tG\t10\t1\t0,0,10,0\t0\tGG\t60\t0\tGG\t55\n", "invalid position"},
		{"bad indel genotype", "I\tchr1\t4\t0\t2\t0\tboth\t50\t40\tGTA\tG\t12\n", "indel genotype"},
		{"out of order", "S\tchr1\t3\tG\t10\t1\t0,0,10,0\t0\tGG\t60\t0\tGG\t55\nS\tchr1\t3\tG\t10\t1\t0,0,10,0\t0\tGG\t60\t0\tGG\t55\n", "test.calls:2"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parseString(t, tc.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestOpenGzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(testCalls))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	filename := filepath.Join(t.TempDir(), "test.calls.gz")
	require.NoError(t, os.WriteFile(filename, buf.Bytes(), 0o644))
	calls, err := Open(filename)
	require.NoError(t, err)
	assert.Len(t, calls.Contigs, 2)
}

type testReference string

func (ref testReference) Substring(start, length int32) string {
	var sb strings.Builder
	for pos := start; pos < start+length; pos++ {
		if pos < 0 || int(pos) >= len(ref) {
			sb.WriteByte('N')
		} else {
			sb.WriteByte(ref[pos])
		}
	}
	return sb.String()
}

func TestReplay(t *testing.T) {
	calls, err := parseString(t, testCalls)
	require.NoError(t, err)
	chr1 := calls.Contig("chr1")

	opt := gvcf.DefaultOptions()
	var out bytes.Buffer
	r := gvcf.Range{Begin: 0, End: 7}
	agg := gvcf.NewAggregator(&opt, "chr1", r, testReference("ACGTACGTACGT"), &out)
	require.NoError(t, chr1.Replay(agg, r))
	assert.Equal(t, "chr1\t1\t.\tA\t.\t.\tLowGQX\tEND=2;BLOCKAVG_min30p3a\tGT:GQX\t./.;.\n"+
		"chr1\t3\t.\tG\t.\t.\tPASS\tEND=3;BLOCKAVG_min30p3a\tGT:GQX\t0/0;55\n"+
		"chr1\t3\t.\tGTA\tG\t50\tPASS\tCIGAR=1M2D\tGT:GQX\t0/1:40\n"+
		"chr1\t4\t.\tT\t.\t.\tPASS\tEND=4;BLOCKAVG_min30p3a\tGT:GQX\t0;40\n"+
		"chr1\t5\t.\tA\t.\t.\tLowGQX\tEND=5;BLOCKAVG_min30p3a\tGT:GQX\t0;.\n"+
		"chr1\t6\t.\tC\t.\t.\tLowGQX\tEND=8;BLOCKAVG_min30p3a\tGT:GQX\t./.;.\n",
		out.String())

	// stored calls are left untouched
	assert.True(t, chr1.Sites[0].Smod.Filters.IsEmpty())
	assert.False(t, chr1.Sites[0].Smod.IsUsedCovered)
}
