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

package vcf

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/exascience/elgvcf/utils"
)

// FileFormatVersion is the VCF version written by this package.
const FileFormatVersion = "VCFv4.1"

// Type is the Type entry of an INFO or FORMAT meta-information line.
type Type int

// The VCF types used by gVCF files.
const (
	Integer Type = iota
	Float
	Flag
	Character
	String
)

// Special values for the Number entry of an INFO or FORMAT line.
const (
	// NumberA is one value per alternate allele.
	NumberA = -1 - iota
	// NumberDot is an unknown number of values.
	NumberDot
)

type (
	// MetaInformation is a structured meta-information line, such as
	// a FILTER or contig line.
	MetaInformation struct {
		ID          utils.Symbol
		Description string // "" if not present
		Fields      []Field
	}

	// Field is a key/value pair in a meta-information line, kept in
	// order.
	Field struct {
		Key, Value string
	}

	// FormatInformation is an INFO or FORMAT meta-information line.
	FormatInformation struct {
		ID          utils.Symbol
		Description string
		Number      int32
		Type        Type
	}

	// MetaLine is a meta-information line that is either a plain
	// string or a *MetaInformation.
	MetaLine struct {
		Key   string
		Value interface{}
	}

	// Header section of a gVCF file.
	Header struct {
		FileFormat string
		Meta       []MetaLine
		Infos      []*FormatInformation
		Filters    []*MetaInformation
		Formats    []*FormatInformation
		Contigs    []*MetaInformation
		Columns    []string
	}
)

// Contig describes one reference contig for the header.
type Contig struct {
	Name   string
	Length int32
}

// Columns are the fixed column names of a VCF file, without sample
// columns.
var Columns = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO", "FORMAT"}

// NewHeader creates a header with the file format line, the file date,
// and a fresh run id.
func NewHeader() *Header {
	return &Header{
		FileFormat: "##fileformat=" + FileFormatVersion,
		Meta: []MetaLine{
			{"fileDate", time.Now().Format("20060102")},
			{"source_run_id", uuid.New().String()},
		},
		Columns: append([]string(nil), Columns...),
	}
}

// AddMeta adds a plain meta-information line.
func (header *Header) AddMeta(key, value string) {
	header.Meta = append(header.Meta, MetaLine{key, value})
}

// AddInfo adds an INFO line.
func (header *Header) AddInfo(id string, number int32, typ Type, description string) {
	header.Infos = append(header.Infos, &FormatInformation{ID: utils.Intern(id), Number: number, Type: typ, Description: description})
}

// AddFormat adds a FORMAT line.
func (header *Header) AddFormat(id string, number int32, typ Type, description string) {
	header.Formats = append(header.Formats, &FormatInformation{ID: utils.Intern(id), Number: number, Type: typ, Description: description})
}

// AddFilter adds a FILTER line.
func (header *Header) AddFilter(id utils.Symbol, description string) {
	header.Filters = append(header.Filters, &MetaInformation{ID: id, Description: description})
}

// AddContig adds a contig line.
func (header *Header) AddContig(contig Contig) {
	header.Contigs = append(header.Contigs, &MetaInformation{
		ID:     utils.Intern(contig.Name),
		Fields: []Field{{"length", strconv.FormatInt(int64(contig.Length), 10)}},
	})
}
