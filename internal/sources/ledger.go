// Package sources maintains the weighted source ledger: the domains the research runs
// draw on, scored by how often their suggestions ended up implemented.
package sources

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// MaxWeight caps every record's weight.
	MaxWeight = 10
	// FallbackDefaultWeight applies when the ledger file has no default_weight.
	FallbackDefaultWeight = 5

	autoAddedNote = "Automatisch toegevoegd"
	summaryHeader = "Gewogen bronnen (hoger = waardevoller):"
)

// Record is one ledger entry.
type Record struct {
	Domain           string `yaml:"domain"`
	Weight           int    `yaml:"weight"`
	ImplementedCount int    `yaml:"implemented_count"`
	Notes            string `yaml:"notes,omitempty"`
}

// Ledger is the in-memory form of the ledger file. It is loaded whole, mutated and
// written back whole; a single writer is assumed.
type Ledger struct {
	DefaultWeight int      `yaml:"default_weight"`
	Sources       []Record `yaml:"sources"`
}

// fileRecord distinguishes missing fields from zero values on load.
type fileRecord struct {
	Domain           string `yaml:"domain"`
	Weight           *int   `yaml:"weight"`
	ImplementedCount int    `yaml:"implemented_count"`
	Notes            string `yaml:"notes"`
}

type fileLedger struct {
	DefaultWeight *int         `yaml:"default_weight"`
	Sources       []fileRecord `yaml:"sources"`
}

// New returns an empty ledger with the given default weight.
func New(defaultWeight int) *Ledger {
	return &Ledger{DefaultWeight: clamp(defaultWeight)}
}

// Load reads a ledger file. A missing default_weight becomes 5, a missing record
// weight becomes the default, and weights outside [0,10] are clamped.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source ledger: %w", err)
	}
	return Parse(data)
}

// Parse decodes ledger YAML.
func Parse(data []byte) (*Ledger, error) {
	var raw fileLedger
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse source ledger: %w", err)
	}

	l := New(FallbackDefaultWeight)
	if raw.DefaultWeight != nil {
		l.DefaultWeight = clamp(*raw.DefaultWeight)
	}
	for _, r := range raw.Sources {
		if strings.TrimSpace(r.Domain) == "" {
			continue
		}
		weight := l.DefaultWeight
		if r.Weight != nil {
			weight = clamp(*r.Weight)
		}
		count := r.ImplementedCount
		if count < 0 {
			count = 0
		}
		l.Sources = append(l.Sources, Record{
			Domain:           r.Domain,
			Weight:           weight,
			ImplementedCount: count,
			Notes:            r.Notes,
		})
	}
	return l, nil
}

// Save rewrites the ledger file atomically via a temp file in the same directory.
func (l *Ledger) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("failed to marshal source ledger: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Find returns the record for domain.
func (l *Ledger) Find(domain string) (Record, bool) {
	if i := l.index(domain); i >= 0 {
		return l.Sources[i], true
	}
	return Record{}, false
}

// WeightOf returns the stored weight for domain, or the default weight.
func (l *Ledger) WeightOf(domain string) int {
	if i := l.index(domain); i >= 0 {
		return l.Sources[i].Weight
	}
	return l.DefaultWeight
}

// RecordEvent registers that a suggestion from domain was acted on (implemented) or
// merely seen. Implemented events raise the weight by one, up to MaxWeight. Unknown
// domains are added. It returns the record as stored after the event.
func (l *Ledger) RecordEvent(domain string, implemented bool) Record {
	if i := l.index(domain); i >= 0 {
		if implemented {
			r := &l.Sources[i]
			r.ImplementedCount++
			r.Weight = min(MaxWeight, r.Weight+1)
		}
		return l.Sources[i]
	}

	r := Record{
		Domain: domain,
		Weight: l.DefaultWeight,
		Notes:  autoAddedNote,
	}
	if implemented {
		r.Weight = min(MaxWeight, r.Weight+1)
		r.ImplementedCount = 1
	}
	l.Sources = append(l.Sources, r)
	return r
}

// Ranked returns the records by weight, highest first. Equal weights keep ledger order.
func (l *Ledger) Ranked() []Record {
	ranked := make([]Record, len(l.Sources))
	copy(ranked, l.Sources)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Weight > ranked[j].Weight
	})
	return ranked
}

// RenderSummary renders the ledger for the synthesis prompt: a header line, then one
// "<domain>: weight <w>, <n>x geïmplementeerd" line per record, highest weight first.
func (l *Ledger) RenderSummary() string {
	lines := []string{summaryHeader}
	for _, r := range l.Ranked() {
		lines = append(lines, fmt.Sprintf("%s: weight %d, %dx geïmplementeerd", r.Domain, r.Weight, r.ImplementedCount))
	}
	return strings.Join(lines, "\n")
}

func (l *Ledger) index(domain string) int {
	for i := range l.Sources {
		if l.Sources[i].Domain == domain {
			return i
		}
	}
	return -1
}

// DomainOf returns the host of rawURL without a leading "www.". Input without a
// scheme ("example.com") is read as a bare host. Input that does not parse, or yields
// nothing, is returned unchanged.
func DomainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	domain := u.Host
	if domain == "" {
		domain = u.Path
	}
	domain = strings.TrimPrefix(domain, "www.")
	if domain == "" {
		return rawURL
	}
	return domain
}

func clamp(w int) int {
	if w < 0 {
		return 0
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}
