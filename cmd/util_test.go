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

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckExist(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "calls.txt")
	require.NoError(t, os.WriteFile(filename, nil, 0o644))
	assert.True(t, checkExist("", filename))
	assert.False(t, checkExist("--reference", filename+".missing"))
	assert.False(t, checkExist("--reference", ""))
	assert.False(t, checkExist("", "--timed"))
}

func TestCheckCreate(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out", "result.g.vcf")
	assert.True(t, checkCreate("", filename))
	_, err := os.Stat(filename)
	assert.True(t, os.IsNotExist(err), "checkCreate must not leave the file behind")
	_, err = os.Stat(filepath.Dir(filename))
	assert.NoError(t, err)

	assert.True(t, checkCreate("", "/dev/stdout"))
	assert.False(t, checkCreate("", "-o"))
}

func TestCreateLogFilename(t *testing.T) {
	when := time.Date(2026, 10, 18, 9, 5, 3, 12, time.UTC)
	assert.Equal(t, filepath.Join("logs", "elgvcf", "elgvcf-2026-10-18-09-05-03.000000012-UTC.log"), createLogFilename(when))
}

func TestTimedRun(t *testing.T) {
	failure := errors.New("phase failed")
	assert.ErrorIs(t, timedRun(true, "", "Failing phase.", 1, func() error { return failure }), failure)

	profile := filepath.Join(t.TempDir(), "run")
	ran := false
	require.NoError(t, timedRun(false, profile, "Profiled phase.", 2, func() error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	_, err := os.Stat(profile + "2.prof")
	assert.NoError(t, err)
}
