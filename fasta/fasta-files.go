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
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"

	"golang.org/x/sys/unix"

	"github.com/exascience/elgvcf/internal"
	"github.com/exascience/elgvcf/utils"
)

// FaiReference represents an entry in an FAI file.
type FaiReference struct {
	Length    int32
	Offset    int64
	LineBases int32
	LineWidth int32
}

// ParseFai parses an FAI file.
func ParseFai(filename string) (fai map[string]FaiReference, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := f.Close(); err == nil {
			err = nerr
		}
	}()

	fai = make(map[string]FaiReference)

	scanner := bufio.NewScanner(f)
	for lineNr := 1; scanner.Scan(); lineNr++ {
		b := bytes.Split(scanner.Bytes(), []byte("\t"))
		if len(b) != 5 {
			return nil, fmt.Errorf("badly formatted fai file %v:%v - invalid number of entries", filename, lineNr)
		}
		var ref FaiReference
		var offset int
		if ref.Length, err = internal.ParseInt32(string(b[1]), "contig length"); err != nil {
			return nil, fmt.Errorf("%v:%v: %w", filename, lineNr, err)
		}
		if offset, err = internal.ParseInt(string(b[2]), "contig offset"); err != nil {
			return nil, fmt.Errorf("%v:%v: %w", filename, lineNr, err)
		}
		ref.Offset = int64(offset)
		if ref.LineBases, err = internal.ParseInt32(string(b[3]), "line bases"); err != nil {
			return nil, fmt.Errorf("%v:%v: %w", filename, lineNr, err)
		}
		if ref.LineWidth, err = internal.ParseInt32(string(b[4]), "line width"); err != nil {
			return nil, fmt.Errorf("%v:%v: %w", filename, lineNr, err)
		}
		fai[string(b[0])] = ref
	}

	return fai, scanner.Err()
}

func contigFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	if j > len(b) {
		j = len(b)
	}
	return string(b[i:j])
}

func initSeq(contig string, fai map[string]FaiReference) []byte {
	if fai != nil {
		if ref, ok := fai[contig]; ok {
			return make([]byte, 0, ref.Length)
		}
	}
	return nil
}

var upperAndN [256]byte

func init() {
	for i := range upperAndN {
		upperAndN[i] = 'N'
	}
	for _, c := range []byte("ACGT") {
		upperAndN[c] = c
		upperAndN[c+'a'-'A'] = c
	}
}

// ToUpperAndN converts a base to upper case and normalizes all
// ambiguity codes, and anything else that is not a base, to N.
func ToUpperAndN(base byte) byte {
	return upperAndN[base]
}

// ParseFasta sequentially parses a FASTA file, which may be gzip or
// BGZF compressed. All bases are converted with ToUpperAndN.
//
// If fai is given, the sequences can be pre-allocated to reduce
// pressure on the garbage collector. The contig names are returned in
// file order.
func ParseFasta(filename string, fai map[string]FaiReference) (fasta map[string][]byte, contigs []string, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if nerr := f.Close(); err == nil {
			err = nerr
		}
	}()

	reader, err := utils.HandleGzip(bufio.NewReader(f))
	if err != nil {
		return nil, nil, fmt.Errorf("%v: %w", filename, err)
	}
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024*1024)

	fasta = make(map[string][]byte)
	var (
		contig string
		seq    []byte
		inSeq  bool
	)
	for scanner.Scan() {
		b := scanner.Bytes()
		switch {
		case len(b) == 0:
			continue
		case b[0] == '>':
			if inSeq {
				fasta[contig] = seq
			}
			contig = contigFromHeader(b)
			if _, ok := fasta[contig]; ok {
				return nil, nil, fmt.Errorf("invalid fasta file %v - duplicate contig %v", filename, contig)
			}
			contigs = append(contigs, contig)
			seq = initSeq(contig, fai)
			inSeq = true
		case !inSeq:
			return nil, nil, fmt.Errorf("invalid fasta file %v - missing first header", filename)
		default:
			for _, c := range b {
				seq = append(seq, upperAndN[c])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%v: %w", filename, err)
	}
	if !inSeq {
		return nil, nil, fmt.Errorf("empty fasta file %v", filename)
	}
	fasta[contig] = seq
	return fasta, contigs, nil
}

type offsetTableEntry struct {
	contig string
	offset int
}

// ElfastaMagic is the magic byte sequence that every .elfasta file starts with.
var ElfastaMagic = []byte{0x31, 0xFA, 0x57, 0xA1} // 31FA57A1 => ELFASTA1

// ToElfasta stores fasta data into a mmappable .elfasta file, with the
// contigs in the given order.
func ToElfasta(fasta map[string][]byte, contigs []string, filename string) {
	file := internal.FileCreate(filename)
	defer internal.Close(file)
	offset := internal.Write(file, ElfastaMagic)
	var offsetTable []offsetTableEntry
	for _, contig := range contigs {
		n := internal.WriteString(file, contig)
		t := internal.WriteString(file, "\t")
		offset += n + t
		offsetTable = append(offsetTable, offsetTableEntry{contig: contig, offset: offset})
		offset += 2 * binary.MaxVarintLen64
		if _, err := file.Seek(int64(offset), 0); err != nil {
			log.Panic(err)
		}
	}
	n := internal.WriteString(file, "\n")
	offset += n
	offsetMap := make(map[string]int)
	for _, contig := range contigs {
		offsetMap[contig] = offset
		offset += internal.Write(file, fasta[contig])
	}
	data, err := unix.Mmap(int(file.Fd()), 0, offset, unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		log.Panic(err)
	}
	defer func() {
		if err := unix.Munmap(data); err != nil {
			log.Panic(err)
		}
	}()
	for _, entry := range offsetTable {
		binary.PutVarint(data[entry.offset:entry.offset+binary.MaxVarintLen64], int64(offsetMap[entry.contig]))
		binary.PutVarint(data[entry.offset+binary.MaxVarintLen64:entry.offset+2*binary.MaxVarintLen64], int64(len(fasta[entry.contig])))
	}
}

// MappedFasta represents the contents of an .elfasta file.
type MappedFasta struct {
	fasta   map[string][]byte
	contigs []string
	data    []byte
	file    *os.File
}

var errNotElfasta = errors.New("invalid magic byte sequence")

// OpenElfasta opens a .elfasta file.
func OpenElfasta(filename string) (result *MappedFasta, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if stat.Size() <= int64(len(ElfastaMagic)) {
		_ = file.Close()
		return nil, fmt.Errorf("%v is not a .elfasta file: %w", filename, errNotElfasta)
	}
	data, err := unix.Mmap(int(file.Fd()), 0, int(stat.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	fail := func(format string, args ...interface{}) (*MappedFasta, error) {
		_ = unix.Munmap(data)
		_ = file.Close()
		return nil, fmt.Errorf(format, args...)
	}
	for i, b := range ElfastaMagic {
		if data[i] != b {
			return fail("%v is not a .elfasta file: %w", filename, errNotElfasta)
		}
	}
	result = &MappedFasta{fasta: make(map[string][]byte), data: data, file: file}
	index := len(ElfastaMagic)
	for index < len(data) && data[index] != '\n' {
		start := index
		for ; index < len(data) && data[index] != '\t'; index++ {
		}
		if index+1+2*binary.MaxVarintLen64 > len(data) {
			return fail("truncated offset table in elfasta file %v", filename)
		}
		contig := string(data[start:index])
		index++
		offset, n := binary.Varint(data[index : index+binary.MaxVarintLen64])
		if n <= 0 {
			return fail("bad number of bytes while parsing offset in elfasta file %v", filename)
		}
		size, n := binary.Varint(data[index+binary.MaxVarintLen64 : index+2*binary.MaxVarintLen64])
		if n <= 0 {
			return fail("bad number of bytes while parsing size in elfasta file %v", filename)
		}
		if offset < 0 || size < 0 || offset+size > int64(len(data)) {
			return fail("contig %v out of bounds in elfasta file %v", contig, filename)
		}
		result.fasta[contig] = data[int(offset):int(offset+size)]
		result.contigs = append(result.contigs, contig)
		index += 2 * binary.MaxVarintLen64
	}
	return result, nil
}

// Close closes the .elfasta file.
func (fasta *MappedFasta) Close() error {
	err := unix.Munmap(fasta.data)
	fasta.data = nil
	if nerr := fasta.file.Close(); err == nil {
		err = nerr
	}
	fasta.file = nil
	fasta.fasta = nil
	return err
}

// Seq fetches a sequence for the given contig from the .elfasta file.
func (fasta *MappedFasta) Seq(contig string) []byte {
	return fasta.fasta[contig]
}
