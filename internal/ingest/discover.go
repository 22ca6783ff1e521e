package ingest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// processedDirName holds archived inputs inside each region directory.
const processedDirName = "_processed"

// DiscoverRegions lists inbox subdirectories that hold pending JSON files.
// Directories starting with "_" are skipped. A missing inbox has no regions.
func DiscoverRegions(inbox string) ([]string, error) {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read inbox: %w", err)
	}

	var regions []string
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		files, err := PendingFiles(filepath.Join(inbox, entry.Name()))
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			regions = append(regions, entry.Name())
		}
	}
	sort.Strings(regions)
	return regions, nil
}

// PendingFiles lists the *.json files directly inside dir in name order.
func PendingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read region directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// archiveName returns "<stem>.<UTC yyyymmdd-hhmmss><ext>".
func archiveName(name, stamp string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "." + stamp + ext
}
