package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/mapcheck/internal/domain"
	"github.com/alexanderramin/mapcheck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "MAP Migration Project Checklist", c.Metadata.Title)
	assert.Equal(t, "1.0", c.Metadata.Version)
	assert.Equal(t, "2024-01-15", c.Metadata.LastUpdated)
	assert.Len(t, c.Resources, 3)
	assert.Equal(t, []string{"phase-1", "phase-2", "phase-6"}, c.PhaseIDs())
	assert.Equal(t, []string{
		"1-1", "1-2", "1-3", "1-4", "1-5",
		"2-1", "2-2", "2-3",
		"6-1", "6-2", "6-3", "6-4",
	}, c.ItemIDs())

	mra, ok := c.Item("1-4")
	require.True(t, ok)
	assert.True(t, mra.Required)
	require.Len(t, mra.Links, 1)
	assert.Equal(t, "MRA Guide", mra.Links[0].Text)

	lite, ok := c.Item("6-4")
	require.True(t, ok)
	assert.True(t, lite.Required)

	p6, ok := c.Phase("phase-6")
	require.True(t, ok)
	assert.Equal(t, "MAP Lite Only", p6.Sections[1].Badge())
	assert.Equal(t, "", p6.Sections[0].Badge())
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Len(t, c.Phases, 3)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	doc := `
metadata:
  title: Custom
phases:
  - id: p1
    title: Only phase
    sections:
      - title: Lite bits
        applicability: [map-lite]
        items:
          - id: a
            text: Do a thing
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Custom", c.Metadata.Title)
	assert.Empty(t, c.Resources)
	it, ok := c.Item("a")
	require.True(t, ok)
	assert.Equal(t, "Do a thing", it.Text)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantMsg string
	}{
		{
			name:    "not yaml",
			doc:     "phases: [unclosed",
			wantMsg: "invalid catalog",
		},
		{
			name:    "missing phases",
			doc:     "metadata: {title: X}",
			wantMsg: "phases",
		},
		{
			name: "item without id",
			doc: `
metadata: {title: X}
phases:
  - id: p1
    title: P
    sections:
      - title: S
        applicability: [map]
        items:
          - text: no id
`,
			wantMsg: "phases[0].sections[0].items[0]",
		},
		{
			name: "selector used as tag",
			doc: `
metadata: {title: X}
phases:
  - id: p1
    title: P
    sections:
      - title: S
        applicability: [both]
        items: []
`,
			wantMsg: "applicability",
		},
		{
			name: "empty applicability",
			doc: `
metadata: {title: X}
phases:
  - id: p1
    title: P
    sections:
      - title: S
        applicability: []
        items: []
`,
			wantMsg: "applicability",
		},
		{
			name: "duplicate item id",
			doc: `
metadata: {title: X}
phases:
  - id: p1
    title: P
    sections:
      - title: S
        applicability: [map]
        items:
          - {id: a, text: one}
  - id: p2
    title: Q
    sections:
      - title: T
        applicability: [map-lite]
        items:
          - {id: a, text: two}
`,
			wantMsg: `duplicate item id "a"`,
		},
		{
			name: "duplicate phase id",
			doc: `
metadata: {title: X}
phases:
  - {id: p1, title: P, sections: []}
  - {id: p1, title: Q, sections: []}
`,
			wantMsg: `duplicate phase id "p1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidCatalog)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestValidate_Fixtures(t *testing.T) {
	assert.NoError(t, Validate(testutil.NewScenarioCatalog()))
	assert.NoError(t, Validate(testutil.NewLargeCatalog(4, 3, 5)))
}

func TestPointerPath(t *testing.T) {
	assert.Equal(t, "(root)", pointerPath(""))
	assert.Equal(t, "phases", pointerPath("/phases"))
	assert.Equal(t, "phases[0].sections[1].title", pointerPath("/phases/0/sections/1/title"))
	assert.Equal(t, "a/b", pointerPath("/a~1b"))
}
