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

package internal

import (
	"fmt"
	"strconv"
)

// ParseInt32 parses a base 10 int32 value, naming the field in the
// returned error.
func ParseInt32(s, field string) (int32, error) {
	result, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %v %q: %w", field, s, err)
	}
	return int32(result), nil
}

// ParseInt parses a base 10 int value, naming the field in the
// returned error.
func ParseInt(s, field string) (int, error) {
	result, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid %v %q: %w", field, s, err)
	}
	return int(result), nil
}

// ParseBool parses a 0/1 flag, naming the field in the returned error.
func ParseBool(s, field string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid %v %q: expected 0 or 1", field, s)
	}
}
