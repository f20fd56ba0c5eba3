package sync

import (
	"fmt"
	"os"
	"strings"

	"github.com/deployproc/deployproc/pkg/data"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// MergeExcludeLists materializes the union of the base exclude file and an
// optional additions file into a temporary file, dropping duplicates. When
// the additions file is absent the base file is used as-is and no temp file
// is created. The returned cleanup func removes the temp file (if any) and
// must run on every exit path of the caller.
func MergeExcludeLists(baseFile string, additionsFile string) (string, func(), error) {
	nop := func() {}

	if baseFile == "" || additionsFile == "" {
		return baseFile, nop, nil
	}
	if _, err := os.Stat(additionsFile); os.IsNotExist(err) {
		return baseFile, nop, nil
	}

	base, err := readLines(baseFile)
	if err != nil {
		return "", nop, err
	}
	additions, err := readLines(additionsFile)
	if err != nil {
		return "", nop, err
	}

	merged := base
	for _, line := range additions {
		if !data.StrContains(merged, line) {
			merged = append(merged, line)
		}
	}

	tmp, err := os.CreateTemp("", "deploy-excludes-")
	if err != nil {
		return "", nop, fmt.Errorf("could not create merged exclude file: %v", err)
	}

	_, err = tmp.WriteString(strings.Join(merged, "\n") + "\n")
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", nop, fmt.Errorf("could not write merged exclude file: %v", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", nop, fmt.Errorf("could not close merged exclude file: %v", err)
	}

	cleanup := func() { _ = os.Remove(tmp.Name()) }
	return tmp.Name(), cleanup, nil
}

func readLines(path string) ([]string, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read exclude file %s: %v", path, err)
	}

	var lines []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines, nil
}

// loadMatcher parses an exclude list into a gitignore-style matcher.
// Comment lines are skipped.
func loadMatcher(path string) (gitignore.Matcher, error) {
	if path == "" {
		return gitignore.NewMatcher(nil), nil
	}

	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}

	return gitignore.NewMatcher(patterns), nil
}
