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
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
)

// FormatString outputs a string to a VCF file, adding necessary double quotes and escapes
func FormatString(out io.ByteWriter, str string) error {
	_ = out.WriteByte('"')
	for i := 0; i < len(str); i++ {
		b := str[i]
		if b == '"' || b == '\\' {
			_ = out.WriteByte('\\')
		}
		_ = out.WriteByte(b)
	}
	return out.WriteByte('"')
}

func needsQuotes(s string) bool {
	for i := 0; i < len(s); i++ {
		if ch := s[i]; ch == '"' || ch == ' ' || ch == ',' || ch == '>' {
			return true
		}
	}
	return false
}

// FormatMetaInformation outputs VCF meta information, which can be just a string or *MetaInformation
func FormatMetaInformation(out *bufio.Writer, meta interface{}) error {
	switch m := meta.(type) {
	case string:
		_, _ = out.WriteString(m)
		return out.WriteByte('\n')
	case *MetaInformation:
		_, _ = out.WriteString("<ID=")
		_, _ = out.WriteString(*m.ID)
		for _, field := range m.Fields {
			_ = out.WriteByte(',')
			_, _ = out.WriteString(field.Key)
			_ = out.WriteByte('=')
			if needsQuotes(field.Value) {
				_ = FormatString(out, field.Value)
			} else {
				_, _ = out.WriteString(field.Value)
			}
		}
		if m.Description != "" {
			_, _ = out.WriteString(",Description=")
			_ = FormatString(out, m.Description)
		}
		_, err := out.WriteString(">\n")
		return err
	default:
		return errors.New("invalid MetaInformation type")
	}
}

// FormatFormatInformation outputs VCF info or format information
func FormatFormatInformation(out *bufio.Writer, format *FormatInformation) error {
	_, _ = out.WriteString("<ID=")
	_, _ = out.WriteString(*format.ID)
	_, _ = out.WriteString(",Number=")
	if format.Number >= 0 {
		_, _ = out.WriteString(strconv.FormatInt(int64(format.Number), 10))
	} else {
		switch format.Number {
		case NumberA:
			_ = out.WriteByte('A')
		case NumberDot:
			_ = out.WriteByte('.')
		default:
			return errors.New("unknown Number kind in a VCF meta-information line")
		}
	}
	_, _ = out.WriteString(",Type=")
	switch format.Type {
	case Integer:
		_, _ = out.WriteString("Integer")
	case Float:
		_, _ = out.WriteString("Float")
	case Flag:
		_, _ = out.WriteString("Flag")
	case Character:
		_, _ = out.WriteString("Character")
	case String:
		_, _ = out.WriteString("String")
	default:
		return errors.New("invalid Type in a VCF meta-information line")
	}
	if format.Description != "" {
		_, _ = out.WriteString(",Description=")
		_ = FormatString(out, format.Description)
	}
	_, err := out.WriteString(">\n")
	return err
}

// Format outputs a VCF header
func (header *Header) Format(out *bufio.Writer) error {
	_, _ = out.WriteString(header.FileFormat)
	_ = out.WriteByte('\n')
	for _, meta := range header.Meta {
		_, _ = out.WriteString("##")
		_, _ = out.WriteString(meta.Key)
		_ = out.WriteByte('=')
		if err := FormatMetaInformation(out, meta.Value); err != nil {
			return err
		}
	}
	for _, contig := range header.Contigs {
		_, _ = out.WriteString("##contig=")
		_ = FormatMetaInformation(out, contig)
	}
	for _, info := range header.Infos {
		_, _ = out.WriteString("##INFO=")
		if err := FormatFormatInformation(out, info); err != nil {
			return err
		}
	}
	for _, filter := range header.Filters {
		_, _ = out.WriteString("##FILTER=")
		_ = FormatMetaInformation(out, filter)
	}
	for _, format := range header.Formats {
		_, _ = out.WriteString("##FORMAT=")
		if err := FormatFormatInformation(out, format); err != nil {
			return err
		}
	}
	_ = out.WriteByte('#')
	if len(header.Columns) > 0 {
		_, _ = out.WriteString(header.Columns[0])
		for _, col := range header.Columns[1:] {
			_ = out.WriteByte('\t')
			_, _ = out.WriteString(col)
		}
	}
	return out.WriteByte('\n')
}

// Filename extensions that are written through bcftools.
const (
	BcfExt = ".bcf"
	GzExt  = ".gz"
)

// OutputFile represents a VCF or BCF file for output.
type OutputFile struct {
	wc io.WriteCloser
	*bufio.Writer
	*exec.Cmd
}

// Create a VCF file for output.
//
// If the filename extension is .bcf or .gz, use bcftools view for
// output.
//
// bcftools must be visible in the directories named by the PATH
// environment variable for .bcf or .gz output.
//
// If the filename extension is not .bcf or .gz, then .vcf is always
// assumed.
//
// If the name is "/dev/stdout", then the output is written to
// os.Stdout.
func Create(name string) (*OutputFile, error) {
	switch ext := filepath.Ext(name); ext {
	case BcfExt, GzExt:
		args := []string{"view"}
		if ext == BcfExt {
			args = append(args, "-Ob")
		} else {
			args = append(args, "-Oz")
		}
		args = append(args, "--threads", strconv.FormatInt(int64(runtime.GOMAXPROCS(0)), 10))
		args = append(args, "-o", name, "-")
		cmd := exec.Command("bcftools", args...)
		inPipe, err := cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		if err = cmd.Start(); err != nil {
			return nil, err
		}
		return &OutputFile{inPipe, bufio.NewWriter(inPipe), cmd}, nil
	}
	if name == "/dev/stdout" {
		return &OutputFile{os.Stdout, bufio.NewWriter(os.Stdout), nil}, nil
	}
	file, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &OutputFile{file, bufio.NewWriter(file), nil}, nil
}

// Close the VCF output file. If bcftools view is used for output, wait
// for its process to finish.
func (output *OutputFile) Close() error {
	err := output.Flush()
	if err != nil {
		return err
	}
	if output.wc != os.Stdout {
		err := output.wc.Close()
		if err != nil {
			return err
		}
	}
	if output.Cmd != nil {
		err := output.Wait()
		if err != nil {
			return err
		}
	}
	return nil
}
