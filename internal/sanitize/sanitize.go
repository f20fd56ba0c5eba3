// Package sanitize strips VCS metadata, CI metadata and stray documentation
// text from a staged artifact before it is committed.
package sanitize

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	// vcsDirNames are directory names holding version control metadata.
	vcsDirNames = map[string]bool{
		".git": true,
		".svn": true,
		".hg":  true,
	}

	// ciDirNames are directory names holding hosting platform or CI
	// metadata.
	ciDirNames = map[string]bool{
		".github":   true,
		".circleci": true,
		".gitlab":   true,
	}

	// docFileNames are documentation files dropped from the artifact when
	// carrying an .md or .txt extension.
	docFileNames = map[string]bool{
		"AUTHORS":      true,
		"CHANGELOG":    true,
		"CONDUCT":      true,
		"CONTRIBUTING": true,
		"INSTALL":      true,
		"MAINTAINERS":  true,
		"PATCHES":      true,
		"TESTING":      true,
		"UPDATE":       true,
	}

	installFileRegex = regexp.MustCompile(`^INSTALL(\.[^.]+)?\.(md|txt)$`)
)

// Options configure one sanitize run.
type Options struct {
	// Dest is the staging directory; Docroot the web root relative to it.
	Dest    string
	Docroot string

	Log *zap.SugaredLogger
}

// Sanitize finds and deletes, under Dest: every *.txt under the core
// framework subtree except LICENSE.txt, VCS and CI metadata directories
// under the docroot and vendor trees, INSTALL files and the fixed set of
// documentation files under the docroot. The full match set is computed
// before anything is deleted, so the search never observes its own
// mutations.
func Sanitize(opts Options) error {
	docroot := filepath.Join(opts.Dest, opts.Docroot)
	vendor := filepath.Join(opts.Dest, "vendor")
	core := filepath.Join(docroot, "core")

	var matches []string

	err := walkIfPresent(core, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if strings.HasSuffix(name, ".txt") && name != "LICENSE.txt" {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, root := range []string{docroot, vendor} {
		err := walkIfPresent(root, func(path string, d fs.DirEntry) error {
			if d.IsDir() && (vcsDirNames[d.Name()] || ciDirNames[d.Name()]) {
				matches = append(matches, path)
				return filepath.SkipDir
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	err = walkIfPresent(docroot, func(path string, d fs.DirEntry) error {
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		if installFileRegex.MatchString(name) {
			matches = append(matches, path)
			return nil
		}
		ext := filepath.Ext(name)
		if ext == ".md" || ext == ".txt" {
			if docFileNames[strings.TrimSuffix(name, ext)] {
				matches = append(matches, path)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	matches = dedupe(matches)
	for _, path := range matches {
		opts.Log.Debugf("sanitizing %s", path)
		if err := os.RemoveAll(path); err != nil {
			return err
		}
	}

	opts.Log.Infof("sanitized %d paths from artifact", len(matches))
	return nil
}

// walkIfPresent walks root with fn, treating a missing root as an empty
// tree. Vendor may legitimately not exist when dependency building is
// disabled.
func walkIfPresent(root string, fn func(path string, d fs.DirEntry) error) error {
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		return fn(path, d)
	})
}

func dedupe(paths []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}

	return out
}
