package gvcf

import (
	"log"
	"strconv"
)

// Alignment path operations.
const (
	Match  = 'M'
	Insert = 'I'
	Delete = 'D'
)

// PathSegment is one run of an alignment path.
type PathSegment struct {
	Length    int32
	Operation byte
}

// Path is a CIGAR-like alignment of a haplotype against the reference.
type Path []PathSegment

func (path Path) appendTo(out []byte) []byte {
	for _, seg := range path {
		out = append(strconv.AppendInt(out, int64(seg.Length), 10), seg.Operation)
	}
	return out
}

func (path Path) String() string {
	return string(path.appendTo(nil))
}

// referenceLength sums the lengths of all segments that consume
// reference bases.
func (path Path) referenceLength() (length int32) {
	for _, seg := range path {
		if seg.Operation != Insert {
			length += seg.Length
		}
	}
	return
}

// appendHapPath appends the path of one indel haplotype: lead matching
// bases (including the VCF anchor base), the deletion, the insertion,
// and trail matching bases.
func appendHapPath(path Path, ik IndelKey, lead, trail int32) Path {
	if lead > 0 {
		path = append(path, PathSegment{lead, Match})
	}
	if ik.DeleteLength > 0 {
		path = append(path, PathSegment{ik.DeleteLength, Delete})
	}
	if ik.InsertLength > 0 {
		path = append(path, PathSegment{ik.InsertLength, Insert})
	}
	if trail > 0 {
		path = append(path, PathSegment{trail, Match})
	}
	return path
}

// addPathToPloidy counts, for every reference offset after the anchor
// base, whether the haplotype path aligns a base there.
func addPathToPloidy(path Path, ploidy []int) {
	offset := -1
	for _, seg := range path {
		switch seg.Operation {
		case Match:
			for j := int32(0); j < seg.Length; j++ {
				if offset >= 0 {
					if offset >= len(ploidy) {
						log.Panicf("alignment path %v extends beyond ploidy range %v", path, len(ploidy))
					}
					ploidy[offset]++
				}
				offset++
			}
		case Delete:
			offset += int(seg.Length)
		}
	}
}
