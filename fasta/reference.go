// elgvcf: a streaming gVCF aggregator for variant calling pipelines.
// Copyright (c) 2017-2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elgvcf/blob/master/LICENSE.txt>.

package fasta

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// ElfastaExt is the filename extension of .elfasta files.
const ElfastaExt = ".elfasta"

// A Reference gives access to the contigs of a reference genome,
// either parsed from a FASTA file or mapped from an .elfasta file.
type Reference struct {
	fasta   map[string][]byte
	contigs []string
	mapped  *MappedFasta
}

// Open opens a reference genome. Files with the .elfasta extension are
// memory mapped; anything else is parsed as a (possibly compressed)
// FASTA file, using an accompanying .fai index if there is one.
func Open(filename string) (*Reference, error) {
	if filepath.Ext(filename) == ElfastaExt {
		mapped, err := OpenElfasta(filename)
		if err != nil {
			return nil, err
		}
		return &Reference{fasta: mapped.fasta, contigs: mapped.contigs, mapped: mapped}, nil
	}
	var fai map[string]FaiReference
	faiName := strings.TrimSuffix(filename, ".gz") + ".fai"
	if _, err := os.Stat(faiName); err == nil {
		if fai, err = ParseFai(faiName); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	fasta, contigs, err := ParseFasta(filename, fai)
	if err != nil {
		return nil, err
	}
	return &Reference{fasta: fasta, contigs: contigs}, nil
}

// Close releases the reference. Segments must not be used afterwards.
func (ref *Reference) Close() error {
	if ref.mapped != nil {
		return ref.mapped.Close()
	}
	return nil
}

// Contigs returns the contig names in reference order.
func (ref *Reference) Contigs() []string {
	return ref.contigs
}

// Segment returns the sequence of the given contig.
func (ref *Reference) Segment(contig string) (Segment, bool) {
	seq, ok := ref.fasta[contig]
	return Segment{Name: contig, seq: seq}, ok
}

// A Segment is the sequence of one contig.
type Segment struct {
	Name string
	seq  []byte
}

// NewSegment creates a segment for the given sequence.
func NewSegment(name string, seq []byte) Segment {
	return Segment{Name: name, seq: seq}
}

// Len returns the length of the segment.
func (seg Segment) Len() int32 {
	return int32(len(seg.seq))
}

// Substring returns length bases starting at the 0-based position
// start, upper-cased with ambiguity codes normalized to N. Positions
// outside of the segment are returned as N.
func (seg Segment) Substring(start, length int32) string {
	if length <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(int(length))
	for pos := start; pos < start+length; pos++ {
		if pos < 0 || int(pos) >= len(seg.seq) {
			_ = sb.WriteByte('N')
		} else {
			_ = sb.WriteByte(upperAndN[seg.seq[pos]])
		}
	}
	return sb.String()
}
