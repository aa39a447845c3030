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

package utils

import (
	"bufio"
	"io"

	"github.com/klauspost/compress/gzip"
)

const (
	gzipID1 = 0x1f
	gzipID2 = 0x8b
)

// IsGzip checks whether the given reader starts with the gzip magic
// bytes, without consuming them.
func IsGzip(buf *bufio.Reader) (bool, error) {
	magic, err := buf.Peek(2)
	if err == io.EOF {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return magic[0] == gzipID1 && magic[1] == gzipID2, nil
}

// HandleGzip checks if the given reader produces a gzip file by
// looking at the initial bytes. It then either returns a gzip reader,
// or returns the given reader unchanged. BGZF files are multi-member
// gzip files and are read transparently.
func HandleGzip(buf *bufio.Reader) (io.Reader, error) {
	ok, err := IsGzip(buf)
	if err != nil {
		return nil, err
	}
	if !ok {
		return buf, nil
	}
	return gzip.NewReader(buf)
}
