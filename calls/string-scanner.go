package calls

import (
	"fmt"
	"strings"

	"github.com/exascience/elgvcf/gvcf"
	"github.com/exascience/elgvcf/internal"
)

// A StringScanner parses the tab-separated fields of a line in a call
// file. The first error encountered is kept, and all later parse
// calls return zero values.
//
// The zero StringScanner is valid and empty.
type StringScanner struct {
	index int
	data  string
	err   error
}

// Reset resets the scanner, and initializes it with the given string.
func (sc *StringScanner) Reset(s string) {
	sc.index = 0
	sc.data = s
	sc.err = nil
}

// Err returns the first error encountered since the last Reset.
func (sc *StringScanner) Err() error {
	return sc.err
}

// exhausted tells whether the last field has been consumed.
func (sc *StringScanner) exhausted() bool {
	return sc.index > len(sc.data)
}

func (sc *StringScanner) readUntilByte(c byte) (s string, found bool) {
	start := sc.index
	for end := sc.index; end < len(sc.data); end++ {
		if sc.data[end] == c {
			sc.index = end + 1
			return sc.data[start:end], true
		}
	}
	sc.index = len(sc.data)
	return sc.data[start:], false
}

// ParseField returns the next field.
func (sc *StringScanner) ParseField(field string) string {
	if sc.err != nil {
		return ""
	}
	if sc.exhausted() {
		sc.err = fmt.Errorf("missing %v", field)
		return ""
	}
	s, found := sc.readUntilByte('\t')
	if !found {
		sc.index = len(sc.data) + 1
	}
	return s
}

// ParseInt32 parses the next field as an int32.
func (sc *StringScanner) ParseInt32(field string) int32 {
	s := sc.ParseField(field)
	if sc.err != nil {
		return 0
	}
	value, err := internal.ParseInt32(s, field)
	sc.err = err
	return value
}

// ParseInt parses the next field as an int.
func (sc *StringScanner) ParseInt(field string) int {
	s := sc.ParseField(field)
	if sc.err != nil {
		return 0
	}
	value, err := internal.ParseInt(s, field)
	sc.err = err
	return value
}

// ParseBool parses the next field as a 0/1 flag.
func (sc *StringScanner) ParseBool(field string) bool {
	s := sc.ParseField(field)
	if sc.err != nil {
		return false
	}
	value, err := internal.ParseBool(s, field)
	sc.err = err
	return value
}

// ParseBase parses the next field as a single reference base. Bases
// are upper-cased, and anything other than A, C, G, or T becomes N.
func (sc *StringScanner) ParseBase(field string) byte {
	s := sc.ParseField(field)
	if sc.err != nil {
		return 0
	}
	if len(s) != 1 {
		sc.err = fmt.Errorf("invalid %v %q", field, s)
		return 0
	}
	if id := gvcf.BaseID(s[0]); id >= 0 {
		return "ACGT"[id]
	}
	return gvcf.UnknownBase
}

// ParseCounts parses the next field as comma-separated A,C,G,T counts.
func (sc *StringScanner) ParseCounts(field string) (counts [gvcf.NBase]int) {
	s := sc.ParseField(field)
	if sc.err != nil {
		return
	}
	entries := strings.Split(s, ",")
	if len(entries) != gvcf.NBase {
		sc.err = fmt.Errorf("invalid %v %q: expected %v counts", field, s, gvcf.NBase)
		return
	}
	for i, entry := range entries {
		if counts[i], sc.err = internal.ParseInt(entry, field); sc.err != nil {
			return
		}
	}
	return
}

// ParseGenotype parses the next field as a diploid site genotype.
func (sc *StringScanner) ParseGenotype(field string) gvcf.Genotype {
	s := sc.ParseField(field)
	if sc.err != nil {
		return 0
	}
	gt, ok := gvcf.ParseGenotype(s)
	if !ok {
		sc.err = fmt.Errorf("invalid %v %q", field, s)
	}
	return gt
}

// ParseIndelGenotype parses the next field as noindel, het, or hom.
func (sc *StringScanner) ParseIndelGenotype(field string) gvcf.IndelGenotype {
	s := sc.ParseField(field)
	if sc.err != nil {
		return gvcf.NoIndel
	}
	for _, gt := range []gvcf.IndelGenotype{gvcf.NoIndel, gvcf.Het, gvcf.Hom} {
		if s == gt.String() {
			return gt
		}
	}
	sc.err = fmt.Errorf("invalid %v %q", field, s)
	return gvcf.NoIndel
}

// ParseEnd checks that all fields have been consumed.
func (sc *StringScanner) ParseEnd() {
	if sc.err == nil && !sc.exhausted() {
		sc.err = fmt.Errorf("unexpected extra fields %q", sc.data[sc.index:])
	}
}
