// Package feed assembles the projects document from archived chat logs and
// serves it over HTTP.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wagnerlima/memory-cloud/devfeed/internal/models"
	"github.com/wagnerlima/memory-cloud/devfeed/internal/storage"
)

// Builder produces the projects document in process. It satisfies
// loader.Fetcher, so the store can load straight from the archive.
type Builder struct {
	// Archive is read first. Nil skips it.
	Archive *storage.Archive

	// LogsDir holds extra *.json chat logs. Empty skips it.
	LogsDir string

	// DefaultProject names records that carry no project.
	DefaultProject string
}

// Fetch reads every archived record (newest first), then every readable
// chat log in LogsDir (newest file first), and derives the project roster.
func (b *Builder) Fetch(ctx context.Context) (*models.RawDataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := []models.RawRecord{}
	if b.Archive != nil {
		archived, err := b.Archive.Records()
		if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}
		records = append(records, archived...)
	}

	if b.LogsDir != "" {
		files, err := b.readLogsDir()
		if err != nil {
			return nil, err
		}
		records = append(records, files...)
	}

	return &models.RawDataset{
		Projects:         b.roster(records),
		ProjectSummaries: records,
	}, nil
}

type logFile struct {
	path    string
	modTime time.Time
}

func (b *Builder) readLogsDir() ([]models.RawRecord, error) {
	matches, err := filepath.Glob(filepath.Join(b.LogsDir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list chat logs: %w", err)
	}

	files := make([]logFile, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, logFile{path: path, modTime: info.ModTime()})
	}
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	records := make([]models.RawRecord, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f.path)
		if err != nil {
			log.Printf("Skipping chat log %s: %v", f.path, err)
			continue
		}
		var rec models.RawRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Printf("Skipping chat log %s: %v", f.path, err)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (b *Builder) roster(records []models.RawRecord) []models.ProjectInfo {
	roster := []models.ProjectInfo{}
	index := make(map[string]int)
	for _, rec := range records {
		name := rec.ProjectName
		if name == "" {
			name = rec.ProjectNameAlt
		}
		if name == "" {
			name = b.DefaultProject
		}
		if i, ok := index[name]; ok {
			roster[i].Updates++
			continue
		}
		index[name] = len(roster)
		roster = append(roster, models.ProjectInfo{Name: name, Updates: 1, Status: "Active"})
	}
	return roster
}
