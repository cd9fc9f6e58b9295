// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package linker

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// global names in a manifest file.
const (
	// list of link(...) or "dir/name" strings.
	manifestLinks = "links"
	// list of directory names.
	manifestScan = "scan"
	// string.
	manifestSource = "source"
	// string.
	manifestSentinel = "sentinel"
)

// LoadManifest loads a manifest file written in Starlark.
//
//	source = "chromium/src"
//	links = [
//	    link("build"),
//	    link("gn", dir = "tools"),
//	    "tools/clang",
//	]
//	scan = ["third_party"]
//
// source and sentinel default to the ones of DefaultManifest.
func LoadManifest(fname string) (*Manifest, error) {
	buf, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return ParseManifest(fname, buf)
}

// ParseManifest parses manifest src read from fname.
func ParseManifest(fname string, src []byte) (*Manifest, error) {
	thread := &starlark.Thread{
		Name: "manifest " + fname,
		Print: func(thread *starlark.Thread, msg string) {
			log.Infof("thread:%s %s", thread.Name, msg)
		},
	}
	predeclared := starlark.StringDict{
		"link": starlark.NewBuiltin("link", starLink),
	}
	globals, err := starlark.ExecFile(thread, fname, src, predeclared)
	if err != nil {
		var eerr *starlark.EvalError
		if errors.As(err, &eerr) {
			log.Warnf("stacktrace:\n%s", eerr.Backtrace())
		}
		return nil, err
	}
	def := DefaultManifest()
	m := &Manifest{
		Source:   def.Source,
		Sentinel: def.Sentinel,
	}
	if v, ok := globals[manifestSource]; ok {
		m.Source, ok = starlark.AsString(v)
		if !ok {
			return nil, fmt.Errorf("%s: %s=%v; want string", fname, manifestSource, v.Type())
		}
	}
	if v, ok := globals[manifestSentinel]; ok {
		m.Sentinel, ok = starlark.AsString(v)
		if !ok {
			return nil, fmt.Errorf("%s: %s=%v; want string", fname, manifestSentinel, v.Type())
		}
	}
	if v, ok := globals[manifestLinks]; ok {
		m.Links, err = unpackLinks(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fname, manifestLinks, err)
		}
	}
	if v, ok := globals[manifestScan]; ok {
		m.Scan, err = unpackList(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fname, manifestScan, err)
		}
	}
	err = m.Validate()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	log.Debugf("manifest %s: source=%s links=%d scan=%q", fname, m.Source, len(m.Links), m.Scan)
	return m, nil
}

// Validate checks all paths in m are local relative paths.
func (m *Manifest) Validate() error {
	if m.Sentinel == "" {
		return errors.New("empty sentinel")
	}
	check := func(kind, p string) error {
		if !isLocal(p) {
			return fmt.Errorf("%s %q: not a local relative path", kind, p)
		}
		return nil
	}
	if err := check(manifestSource, m.Source); err != nil {
		return err
	}
	if err := check(manifestSentinel, m.Sentinel); err != nil {
		return err
	}
	for _, l := range m.Links {
		if l.Name == "" || strings.Contains(l.Name, "/") {
			return fmt.Errorf("link %q: bad name", l.Path())
		}
		if err := check("link", l.Path()); err != nil {
			return err
		}
	}
	for _, dir := range m.Scan {
		if err := check(manifestScan, dir); err != nil {
			return err
		}
	}
	return nil
}

func isLocal(p string) bool {
	if p == "" || path.IsAbs(p) || strings.Contains(p, `\`) {
		return false
	}
	p = path.Clean(p)
	return p != ".." && !strings.HasPrefix(p, "../")
}

// starLink is Starlark builtin `link(name, dir="")`.
func starLink(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name, dir string
	err := starlark.UnpackArgs(fn.Name(), args, kwargs, "name", &name, "dir?", &dir)
	if err != nil {
		return nil, err
	}
	return starlarkstruct.FromStringDict(starlark.String("link"), starlark.StringDict{
		"name": starlark.String(name),
		"dir":  starlark.String(dir),
	}), nil
}

func unpackLinks(v starlark.Value) ([]Link, error) {
	iterator := starlark.Iterate(v)
	if iterator == nil {
		return nil, fmt.Errorf("got %v; want iterator", v.Type())
	}
	defer iterator.Done()
	var elem starlark.Value
	var links []Link
	for iterator.Next(&elem) {
		if s, ok := starlark.AsString(elem); ok {
			dir, name := path.Split(s)
			links = append(links, Link{Dir: strings.TrimSuffix(dir, "/"), Name: name})
			continue
		}
		st, ok := elem.(*starlarkstruct.Struct)
		if !ok {
			return nil, fmt.Errorf("got %v in %v; want link or string", elem.Type(), v.Type())
		}
		var link Link
		for _, f := range []struct {
			name string
			dst  *string
		}{
			{"name", &link.Name},
			{"dir", &link.Dir},
		} {
			fv, err := st.Attr(f.name)
			if err != nil {
				return nil, err
			}
			*f.dst, ok = starlark.AsString(fv)
			if !ok {
				return nil, fmt.Errorf("link.%s=%v; want string", f.name, fv.Type())
			}
		}
		links = append(links, link)
	}
	return links, nil
}

func unpackList(v starlark.Value) ([]string, error) {
	iterator := starlark.Iterate(v)
	if iterator == nil {
		return nil, fmt.Errorf("got %v; want iterator", v.Type())
	}
	defer iterator.Done()
	var elem starlark.Value
	var list []string
	for iterator.Next(&elem) {
		s, ok := starlark.AsString(elem)
		if !ok {
			return nil, fmt.Errorf("got %v in %v; want string", elem.Type(), v.Type())
		}
		list = append(list, s)
	}
	return list, nil
}
