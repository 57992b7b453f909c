package gen

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// knownFiles lists every name a run can produce.
var knownFiles = []string{
	FileStorage, FileEntity, FileEntities, FileEvents, FileSystems, FileConstructors, FileSingle,
}

// Write stores the artifacts in dir, creating it if needed. Files an
// earlier run generated that this run does not produce are removed, so
// switching to a single file or dropping all events leaves no stale
// declarations behind. Files without the generated notice are never
// touched.
func (a *Artifacts) Write(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}

	var written []string
	for _, f := range a.Files {
		p := filepath.Join(dir, f.Name)
		if err := os.WriteFile(p, f.Source, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}

	for _, name := range knownFiles {
		if slices.ContainsFunc(a.Files, func(f File) bool { return f.Name == name }) {
			continue
		}
		p := filepath.Join(dir, name)
		stale, err := isGenerated(p)
		if err != nil {
			return written, err
		}
		if stale {
			if err := os.Remove(p); err != nil {
				return written, fmt.Errorf("remove stale %s: %w", p, err)
			}
		}
	}
	return written, nil
}

// File returns the artifact with the given name.
func (a *Artifacts) File(name string) (File, bool) {
	i := slices.IndexFunc(a.Files, func(f File) bool { return f.Name == name })
	if i < 0 {
		return File{}, false
	}
	return a.Files[i], true
}

func isGenerated(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	return strings.HasPrefix(string(line), generatedNotice), nil
}
