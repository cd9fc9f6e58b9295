// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package depsedit

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Option is an option for PruneFile.
type Option struct {
	Pruner

	// DryRun reports results without writing the DEPS file.
	DryRun bool
}

// PruneFile removes entries listed in listFile from depsFile.
// depsFile is rewritten in place once all directives are applied.
// When a fatal error occurs, depsFile is left untouched.
func PruneFile(ctx context.Context, depsFile, listFile string, opt Option) ([]Result, error) {
	buf, err := os.ReadFile(listFile)
	if err != nil {
		return nil, err
	}
	directives, err := ParseDirectivesBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", listFile, err)
	}

	flag := os.O_RDWR
	if opt.DryRun {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(depsFile, flag, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", depsFile, err)
	}
	text, results, err := opt.Apply(ctx, string(data), directives)
	if err != nil {
		return results, fmt.Errorf("%s: %w", listFile, err)
	}
	if opt.DryRun {
		return results, nil
	}
	n, err := f.WriteAt([]byte(text), 0)
	if err != nil {
		return results, fmt.Errorf("failed to write %s: %w", depsFile, err)
	}
	err = f.Truncate(int64(n))
	if err != nil {
		return results, fmt.Errorf("failed to truncate %s: %w", depsFile, err)
	}
	return results, f.Close()
}
