// Package sync mirrors the source tree into the staging directory under an
// exclusion filter, the way the deploy pipeline's rsync step would.
package sync

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/deployproc/deployproc/pkg/data"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"go.uber.org/zap"
)

// Options configure one sync run.
type Options struct {
	// Source and Dest are the source repository root and the staging
	// directory.
	Source string
	Dest   string

	// Docroot is the web root relative to Source.
	Docroot string

	// Multisites are site directories under <Docroot>/sites widened to
	// 0777 for the duration of the sync and restored to 0755 afterwards,
	// on every exit path.
	Multisites []string

	// ExcludeFile is the base exclude list; ExcludeAdditionsFile is
	// unioned into it when present.
	ExcludeFile          string
	ExcludeAdditionsFile string

	// GitignoreFile replaces the synced .gitignore in Dest when set.
	GitignoreFile string

	Log *zap.SugaredLogger
}

// Sync performs a one-way mirror of Source into Dest: files missing from
// Dest are copied, files in Dest that no longer exist in Source are
// deleted. Excluded paths are neither copied nor deleted, and Dest/.git is
// never touched no matter what the exclude list says.
func Sync(opts Options) error {
	listPath, cleanup, err := MergeExcludeLists(opts.ExcludeFile, opts.ExcludeAdditionsFile)
	if err != nil {
		return err
	}
	defer cleanup()

	matcher, err := loadMatcher(listPath)
	if err != nil {
		return err
	}

	restore, err := widenMultisitePermissions(opts.Source, opts.Docroot, opts.Multisites)
	defer restore()
	if err != nil {
		return err
	}

	opts.Log.Debugf("syncing %s to %s", opts.Source, opts.Dest)
	if err := copyPass(opts.Source, opts.Dest, matcher); err != nil {
		return err
	}
	if err := deletePass(opts.Source, opts.Dest, matcher); err != nil {
		return err
	}

	if opts.GitignoreFile != "" {
		if err := data.CopyFile(opts.GitignoreFile, filepath.Join(opts.Dest, ".gitignore")); err != nil {
			return fmt.Errorf("could not install deploy .gitignore: %v", err)
		}
	}

	return nil
}

// widenMultisitePermissions chmods the configured multisite directories to
// 0777 so the mirror never fails on unreadable site files. The returned
// restore func narrows every directory it actually widened back to 0755 and
// is safe to call even when widening failed halfway.
func widenMultisitePermissions(source string, docroot string, sites []string) (func(), error) {
	var widened []string
	restore := func() {
		for _, p := range widened {
			_ = os.Chmod(p, 0755)
		}
	}

	for _, site := range sites {
		p := filepath.Join(source, docroot, "sites", site)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.Chmod(p, 0777); err != nil {
			return restore, fmt.Errorf("could not widen permissions on %s: %v", p, err)
		}
		widened = append(widened, p)
	}

	return restore, nil
}

func copyPass(src string, dst string, matcher gitignore.Matcher) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		// The source repository's own history never enters the staging
		// directory through the mirror.
		if rel == ".git" {
			return filepath.SkipDir
		}

		parts := strings.Split(filepath.ToSlash(rel), "/")
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if matcher.Match(parts, true) {
				return filepath.SkipDir
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}

		if matcher.Match(parts, false) {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("could not read symlink %s: %v", path, err)
			}
			_ = os.Remove(target)
			return os.Symlink(link, target)
		}

		return data.CopyFile(path, target)
	})
}

func deletePass(src string, dst string, matcher gitignore.Matcher) error {
	return filepath.WalkDir(dst, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The entry may have been removed with its parent.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}

		rel, err := filepath.Rel(dst, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		// The staging repository's history is never deleted, regardless
		// of exclude rules.
		if rel == ".git" {
			return filepath.SkipDir
		}

		parts := strings.Split(filepath.ToSlash(rel), "/")
		isDir := d.IsDir()

		if matcher.Match(parts, isDir) {
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		if _, err := os.Lstat(filepath.Join(src, rel)); os.IsNotExist(err) {
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("could not delete %s: %v", path, err)
			}
			if isDir {
				return filepath.SkipDir
			}
		}

		return nil
	})
}
