// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package linker links shared build tooling of a nested chromium checkout
// into the parent source tree.
package linker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

var (
	// ErrAlreadyLinked is returned when the sentinel file exists.
	ErrAlreadyLinked = errors.New("already linked")

	errIsDir = errors.New("directory exists")
)

// Link is a symlink <root>/<Dir>/<Name> to <root>/<source>/<Dir>/<Name>.
type Link struct {
	Dir  string
	Name string
}

// Path returns slash separated relative path of the link.
func (l Link) Path() string {
	if l.Dir == "" {
		return l.Name
	}
	return l.Dir + "/" + l.Name
}

func (l Link) String() string { return l.Path() }

// Manifest describes links to create.
type Manifest struct {
	// Source is the directory of the nested checkout, relative to root.
	Source string

	// Links are explicitly listed links.
	Links []Link

	// Scan lists directories in Source whose subdirectories are all linked.
	Scan []string

	// Sentinel is the file name, relative to root, marking a completed run.
	Sentinel string
}

// DefaultManifest returns the manifest used to link chromium deps into
// a webrtc checkout.
func DefaultManifest() *Manifest {
	m := &Manifest{
		Source:   "chromium/src",
		Scan:     []string{"third_party"},
		Sentinel: ".get-chromium-deps-ran",
	}
	for _, name := range []string{"build", "buildtools", "testing"} {
		m.Links = append(m.Links, Link{Name: name})
	}
	for _, name := range []string{
		"clang",
		"generate_library_loader",
		"generate_stubs",
		"gn",
		"gyp",
		"isolate_driver.py",
		"memory",
		"protoc_wrapper",
		"python",
		"swarming_client",
		"win",
	} {
		m.Links = append(m.Links, Link{Dir: "tools", Name: name})
	}
	return m
}

// Linker creates links in a root directory.
type Linker struct {
	// Root is the directory where links are created.
	Root string

	// Force creates links even if the sentinel file exists.
	Force bool

	// DryRun reports links without touching the filesystem.
	DryRun bool
}

// Result is the outcome of a link.
type Result struct {
	Link   Link
	Target string

	// Skipped is set when a real directory exists at the link path.
	Skipped bool

	Err error
}

func (r Result) String() string {
	if r.Skipped {
		return fmt.Sprintf("'%s' exists, skipped", r.Link.Path())
	}
	if r.Err != nil {
		return fmt.Sprintf("%s: %v", r.Link.Path(), r.Err)
	}
	return fmt.Sprintf("'%s' -> '%s'", r.Link.Path(), r.Target)
}

// LinkError is returned when some links failed.
type LinkError struct {
	Failed []Result
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to create %d link(s): first %v", len(e.Failed), e.Failed[0])
}

// Plan returns links to create for m, expanding scanned directories.
// Duplicate links are returned once.
func (l *Linker) Plan(m *Manifest) ([]Link, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return nil, err
	}
	seen := make(map[Link]bool)
	var links []Link
	add := func(link Link) {
		if seen[link] {
			return
		}
		seen[link] = true
		links = append(links, link)
	}
	for _, link := range m.Links {
		add(link)
	}
	for _, dir := range m.Scan {
		src := filepath.Join(root, filepath.FromSlash(m.Source), filepath.FromSlash(dir))
		ents, err := os.ReadDir(src)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", src, err)
		}
		var names []string
		for _, ent := range ents {
			// follow symlinks to directories.
			fi, err := os.Stat(filepath.Join(src, ent.Name()))
			if err != nil || !fi.IsDir() {
				log.Debugf("skip %s/%s: not directory", dir, ent.Name())
				continue
			}
			names = append(names, ent.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			add(Link{Dir: dir, Name: name})
		}
	}
	return links, nil
}

// Run creates links described by m.
// It returns ErrAlreadyLinked if the sentinel file exists, unless Force is set.
// The sentinel file is written only when all links are created.
func (l *Linker) Run(ctx context.Context, m *Manifest) ([]Result, error) {
	root, err := filepath.Abs(l.Root)
	if err != nil {
		return nil, err
	}
	sentinel := filepath.Join(root, filepath.FromSlash(m.Sentinel))
	if !l.DryRun {
		lock, err := newLockFile(sentinel + ".lock")
		switch {
		case errors.Is(err, errors.ErrUnsupported):
			log.Warnf("lock file is not supported. run without lock")
		case err != nil:
			return nil, err
		default:
			defer lock.Close()
			err = lock.Lock()
			if err != nil {
				return nil, err
			}
			defer lock.Unlock()
		}
	}
	if _, err := os.Stat(sentinel); err == nil && !l.Force {
		return nil, fmt.Errorf("%s exists: %w", sentinel, ErrAlreadyLinked)
	}
	links, err := l.Plan(m)
	if err != nil {
		return nil, err
	}
	log.Infof("linking %d paths in %s to %s", len(links), m.Source, root)
	results := make([]Result, 0, len(links))
	var failed []Result
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		target := filepath.Join(root, filepath.FromSlash(m.Source), filepath.FromSlash(link.Path()))
		r := Result{Link: link, Target: target}
		if !l.DryRun {
			r.Err = symlink(target, filepath.Join(root, filepath.FromSlash(link.Path())))
		}
		if errors.Is(r.Err, errIsDir) {
			log.Warnf("%v", r.Err)
			r.Err = nil
			r.Skipped = true
		}
		if r.Err != nil {
			failed = append(failed, r)
		}
		results = append(results, r)
	}
	if len(failed) > 0 {
		return results, &LinkError{Failed: failed}
	}
	if l.DryRun {
		return results, nil
	}
	err = os.WriteFile(sentinel, nil, 0644)
	if err != nil {
		return results, fmt.Errorf("failed to write sentinel: %w", err)
	}
	return results, nil
}

// symlink creates symlink at linkname pointing to target,
// replacing an existing file or symlink. An existing directory is kept.
func symlink(target, linkname string) error {
	fi, err := os.Lstat(linkname)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		err = os.MkdirAll(filepath.Dir(linkname), 0755)
		if err != nil {
			return err
		}
	case err != nil:
		return err
	case fi.IsDir():
		return fmt.Errorf("%s: %w", linkname, errIsDir)
	default:
		err = os.Remove(linkname)
		if err != nil {
			return err
		}
	}
	return os.Symlink(target, linkname)
}
