// Package patch applies unified diffs to the staged artifact tree.
package patch

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
)

// ApplyDir applies every *.patch and *.diff file found in patchesDir to the
// artifact filesystem, in lexical order. A patch that fails to parse or
// apply aborts the run.
func ApplyDir(patchesDir string, artifact billy.Filesystem, log *zap.SugaredLogger) error {
	entries, err := os.ReadDir(patchesDir)
	if err != nil {
		return fmt.Errorf("could not read patches directory %s: %v", patchesDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".patch") || strings.HasSuffix(name, ".diff") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		log.Infof("applying patch %s", name)
		if err := applyFile(filepath.Join(patchesDir, name), artifact); err != nil {
			return fmt.Errorf("could not apply patch %s: %v", name, err)
		}
	}

	return nil
}

func applyFile(path string, artifact billy.Filesystem) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	files, _, err := gitdiff.Parse(f)
	if err != nil {
		return fmt.Errorf("could not parse patch: %v", err)
	}

	for _, patched := range files {
		if err := applyPatchedFile(patched, artifact); err != nil {
			return err
		}
	}

	return nil
}

func applyPatchedFile(patched *gitdiff.File, artifact billy.Filesystem) error {
	// Plain unified diffs keep the conventional a/ and b/ path prefixes
	// after parsing; git-format patches arrive already stripped.
	oldName := strings.TrimPrefix(patched.OldName, "a/")
	newName := strings.TrimPrefix(patched.NewName, "b/")

	if patched.IsDelete {
		if err := artifact.Remove(oldName); err != nil {
			return fmt.Errorf("could not delete %s: %v", oldName, err)
		}
		return nil
	}

	var subject []byte
	if !patched.IsNew {
		var err error
		subject, err = util.ReadFile(artifact, oldName)
		if err != nil {
			return fmt.Errorf("could not read patch subject %s: %v", oldName, err)
		}
	}

	var output bytes.Buffer
	if err := gitdiff.Apply(&output, bytes.NewReader(subject), patched); err != nil {
		return fmt.Errorf("could not apply hunks to %s: %v", newName, err)
	}

	if oldName != "" && oldName != newName {
		_ = artifact.Remove(oldName)
	}

	if err := util.WriteFile(artifact, newName, output.Bytes(), 0644); err != nil {
		return fmt.Errorf("could not write %s: %v", newName, err)
	}

	return nil
}
