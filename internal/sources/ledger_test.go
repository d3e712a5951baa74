package sources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/path", "example.com"},
		{"https://www.example.com/x", "example.com"},
		{"http://blog.example.org:8080/a?b=c", "blog.example.org:8080"},
		{"example.com", "example.com"},
		{"www.example.com", "example.com"},
		{"not a url", "not a url"},
		{"", ""},
		{"http://[::1", "http://[::1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, DomainOf(tt.in))
		})
	}
}

func TestWeightOf(t *testing.T) {
	l := &Ledger{DefaultWeight: 3, Sources: []Record{{Domain: "example.com", Weight: 8}}}
	assert.Equal(t, 8, l.WeightOf("example.com"))
	assert.Equal(t, 3, l.WeightOf("unknown.com"))
}

func TestRecordEvent_ExistingImplemented(t *testing.T) {
	l := &Ledger{DefaultWeight: 5, Sources: []Record{{Domain: "a.com", Weight: 5}}}
	got := l.RecordEvent("a.com", true)
	assert.Equal(t, Record{Domain: "a.com", Weight: 6, ImplementedCount: 1}, got)
	assert.Equal(t, got, l.Sources[0])
}

func TestRecordEvent_ExistingNotImplemented(t *testing.T) {
	l := &Ledger{DefaultWeight: 5, Sources: []Record{{Domain: "a.com", Weight: 5}}}
	for i := 0; i < 3; i++ {
		l.RecordEvent("a.com", false)
	}
	assert.Equal(t, []Record{{Domain: "a.com", Weight: 5}}, l.Sources)
}

func TestRecordEvent_CappedAtMax(t *testing.T) {
	l := &Ledger{DefaultWeight: 5, Sources: []Record{{Domain: "a.com", Weight: 8, ImplementedCount: 5}}}
	prev := l.WeightOf("a.com")
	for i := 0; i < 20; i++ {
		l.RecordEvent("a.com", true)
		w := l.WeightOf("a.com")
		assert.GreaterOrEqual(t, w, prev)
		assert.LessOrEqual(t, w, MaxWeight)
		prev = w
	}
	r, ok := l.Find("a.com")
	require.True(t, ok)
	assert.Equal(t, 10, r.Weight)
	assert.Equal(t, 25, r.ImplementedCount)
}

func TestRecordEvent_NewDomain(t *testing.T) {
	l := New(5)
	l.RecordEvent("new.com", true)
	l.RecordEvent("seen.com", false)

	want := []Record{
		{Domain: "new.com", Weight: 6, ImplementedCount: 1, Notes: "Automatisch toegevoegd"},
		{Domain: "seen.com", Weight: 5, ImplementedCount: 0, Notes: "Automatisch toegevoegd"},
	}
	if diff := cmp.Diff(want, l.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordEvent_NewDomainAtMaxDefault(t *testing.T) {
	l := New(10)
	r := l.RecordEvent("top.com", true)
	assert.Equal(t, 10, r.Weight)
}

func TestRenderSummary_SortedByWeight(t *testing.T) {
	l := &Ledger{Sources: []Record{
		{Domain: "low.com", Weight: 2},
		{Domain: "high.com", Weight: 9, ImplementedCount: 3},
	}}
	lines := strings.Split(l.RenderSummary(), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Gewogen bronnen (hoger = waardevoller):", lines[0])
	assert.Equal(t, "high.com: weight 9, 3x geïmplementeerd", lines[1])
	assert.Equal(t, "low.com: weight 2, 0x geïmplementeerd", lines[2])
}

func TestRenderSummary_StableTies(t *testing.T) {
	l := &Ledger{Sources: []Record{
		{Domain: "first.com", Weight: 5},
		{Domain: "top.com", Weight: 7},
		{Domain: "second.com", Weight: 5},
	}}
	lines := strings.Split(l.RenderSummary(), "\n")
	assert.Equal(t, []string{
		"Gewogen bronnen (hoger = waardevoller):",
		"top.com: weight 7, 0x geïmplementeerd",
		"first.com: weight 5, 0x geïmplementeerd",
		"second.com: weight 5, 0x geïmplementeerd",
	}, lines)

	// Ranking must not reorder the ledger itself.
	assert.Equal(t, "first.com", l.Sources[0].Domain)
}

func TestRenderSummary_Empty(t *testing.T) {
	assert.Equal(t, "Gewogen bronnen (hoger = waardevoller):", New(5).RenderSummary())
}

func TestParse_Defaults(t *testing.T) {
	l, err := Parse([]byte(`
sources:
  - domain: a.com
    implemented_count: 2
  - domain: b.com
    weight: 14
  - domain: c.com
    weight: -3
    notes: handmatig
  - weight: 4
`))
	require.NoError(t, err)
	assert.Equal(t, 5, l.DefaultWeight)
	want := []Record{
		{Domain: "a.com", Weight: 5, ImplementedCount: 2},
		{Domain: "b.com", Weight: 10},
		{Domain: "c.com", Weight: 0, Notes: "handmatig"},
	}
	if diff := cmp.Diff(want, l.Sources); diff != "" {
		t.Errorf("Sources mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_ExplicitDefaultWeight(t *testing.T) {
	l, err := Parse([]byte("default_weight: 3\nsources: []\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, l.WeightOf("unknown.com"))

	l, err = Parse([]byte("default_weight: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.DefaultWeight)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("sources: {not: [a list"))
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "sources.yaml")
	l := New(4)
	l.RecordEvent("docs.anthropic.com", true)
	l.RecordEvent("github.com", false)

	require.NoError(t, l.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	if diff := cmp.Diff(l, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file left behind")
}

func TestSave_OverwritesWholesale(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_weight: 5\nsources:\n  - domain: old.com\n    weight: 9\n"), 0644))

	l, err := Load(path)
	require.NoError(t, err)
	l.RecordEvent("old.com", true)
	require.NoError(t, l.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "weight: 10")
	assert.Contains(t, string(data), "implemented_count: 1")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
