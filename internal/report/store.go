package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DateLayout is the date format used in report file names and mail subjects.
const DateLayout = "2006-01-02"

const (
	filePrefix = "rapport-"
	fileSuffix = ".md"
)

// FileName returns the report file name for date.
func FileName(date time.Time) string {
	return filePrefix + date.Format(DateLayout) + fileSuffix
}

// Store writes reports to the reports directory and, when set, a second copy to the
// publications directory.
type Store struct {
	dir    string
	pubDir string
	logger *zap.Logger
}

// NewStore creates a store. pubDir may be empty.
func NewStore(dir, pubDir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, pubDir: pubDir, logger: logger}
}

// Save writes report as rapport-YYYY-MM-DD.md for date. It returns the primary path;
// a failed publication copy is logged and does not fail the save.
func (s *Store) Save(date time.Time, report string) (string, error) {
	name := FileName(date)

	path, err := writeReport(s.dir, name, report)
	if err != nil {
		return "", err
	}
	s.logger.Info("report saved", zap.String("path", path))

	if s.pubDir != "" {
		pubPath, err := writeReport(s.pubDir, name, report)
		if err != nil {
			s.logger.Warn("publication copy failed", zap.String("dir", s.pubDir), zap.Error(err))
		} else {
			s.logger.Info("publication saved", zap.String("path", pubPath))
		}
	}
	return path, nil
}

// Path returns the path of the report for date (YYYY-MM-DD).
func (s *Store) Path(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid report date %q (want YYYY-MM-DD): %w", date, err)
	}
	return filepath.Join(s.dir, FileName(t)), nil
}

// Load reads the report for date.
func (s *Store) Load(date string) (string, error) {
	path, err := s.Path(date)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report: %w", err)
	}
	return string(data), nil
}

// Dates lists the dates of stored reports, newest first.
func (s *Store) Dates() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		date := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
		if _, err := time.Parse(DateLayout, date); err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates, nil
}

func writeReport(dir, name, report string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(report), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
