package library

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPick(t *testing.T) {
	older := Entry{ID: "a:b", UpdatedAt: "2024-01-01T00:00:00.000Z", Status: "reading"}
	newer := Entry{ID: "a:b", UpdatedAt: "2024-02-01T00:00:00.000Z", Status: "finished"}

	tests := []struct {
		name               string
		existing, incoming Entry
		want               Entry
	}{
		{"incoming newer", older, newer, newer},
		{"existing newer", newer, older, newer},
		{"tie goes to incoming", Entry{UpdatedAt: older.UpdatedAt, Status: "x"}, older, older},
		{"missing existing time", Entry{Status: "dropped"}, older, older},
		{"missing incoming time", newer, Entry{Status: "dropped"}, Entry{Status: "dropped"}},
		{"garbage time", Entry{UpdatedAt: "yesterday"}, older, older},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Pick(tt.existing, tt.incoming))
		})
	}
}

func TestMerge(t *testing.T) {
	existing := Library{
		"novelbin:a": {
			ID:        "novelbin:a",
			Source:    "novelbin",
			NovelKey:  "a",
			NovelName: sp("A"),
			CoverURL:  sp("https://novelbin.com/a.jpg"),
			Genres:    []string{"Fantasy"},
			Status:    "on-hold",
			UpdatedAt: "2024-01-01T00:00:00.000Z",
		},
		"novelbin:b": {
			ID:           "novelbin:b",
			Source:       "novelbin",
			NovelKey:     "b",
			ChapterLabel: sp("10"),
			Status:       "reading",
			UpdatedAt:    "2024-05-01T00:00:00.000Z",
		},
		"novelbin:keep": {ID: "novelbin:keep", Source: "novelbin", NovelKey: "keep", Status: "dropped"},
	}
	incoming := Library{
		"novelbin:a": {
			Source:       "novelbin",
			NovelKey:     "a",
			ChapterLabel: sp("7"),
			Status:       "complete",
			UpdatedAt:    "2024-03-01T00:00:00.000Z",
		},
		"novelbin:b": {
			Source:       "novelbin",
			NovelKey:     "b",
			NovelName:    sp("B"),
			ChapterLabel: sp("3"),
			Genres:       []string{"Horror"},
			Status:       "dropped",
			UpdatedAt:    "2024-02-01T00:00:00.000Z",
		},
		"wuxiaworld:new": {Source: "wuxiaworld", NovelKey: "new", Status: "current"},
	}

	out := Merge(existing, incoming)
	require.Len(t, out, 4)

	t.Run("incoming winner keeps fields it lacks", func(t *testing.T) {
		a := out["novelbin:a"]
		assert.Equal(t, "novelbin:a", a.ID)
		assert.Equal(t, "A", *a.NovelName)
		assert.Equal(t, "https://novelbin.com/a.jpg", *a.CoverURL)
		assert.Equal(t, "7", *a.ChapterLabel)
		assert.Equal(t, string(Finished), a.Status)
		assert.Equal(t, "2024-03-01T00:00:00.000Z", a.UpdatedAt)
		assert.Equal(t, []string{"Fantasy"}, a.Genres)
	})

	t.Run("existing winner fills from incoming", func(t *testing.T) {
		b := out["novelbin:b"]
		assert.Equal(t, "10", *b.ChapterLabel)
		assert.Equal(t, "B", *b.NovelName)
		assert.Equal(t, string(Reading), b.Status)
		assert.Equal(t, "2024-05-01T00:00:00.000Z", b.UpdatedAt)
		assert.Equal(t, []string{"Horror"}, b.Genres, "incoming genres are preferred regardless of winner")
	})

	t.Run("new and untouched entries", func(t *testing.T) {
		n := out["wuxiaworld:new"]
		assert.Equal(t, "wuxiaworld:new", n.ID)
		assert.Equal(t, string(Reading), n.Status)
		assert.Equal(t, string(Dropped), out["novelbin:keep"].Status)
	})

	t.Run("inputs are not modified", func(t *testing.T) {
		assert.Equal(t, "on-hold", existing["novelbin:a"].Status)
		assert.Equal(t, "complete", incoming["novelbin:a"].Status)
		assert.Len(t, existing, 3)
	})
}

func TestMergeGenresFallback(t *testing.T) {
	existing := Library{"a:b": {ID: "a:b", Source: "a", NovelKey: "b"}}
	incoming := Library{"a:b": {Source: "a", NovelKey: "b"}}

	out := Merge(existing, incoming)

	require.NotNil(t, out["a:b"].Genres)
	assert.Empty(t, out["a:b"].Genres)
}

func TestMergeNullInWinnerKeepsStored(t *testing.T) {
	existing, _, err := Decode([]byte(`{"a:b": {
		"source": "a", "novel_key": "b", "novel_name": "Stored",
		"cover_url": "https://img/c.jpg", "updated_at": "2024-01-01T00:00:00.000Z"
	}}`))
	require.NoError(t, err)
	incoming, _, err := Decode([]byte(`{"a:b": {
		"source": "a", "novel_key": "b", "novel_name": null,
		"cover_url": null, "chapter_label": "9", "updated_at": "2024-02-01T00:00:00.000Z"
	}}`))
	require.NoError(t, err)

	got := Merge(existing, incoming)["a:b"]

	require.NotNil(t, got.NovelName)
	assert.Equal(t, "Stored", *got.NovelName)
	require.NotNil(t, got.CoverURL)
	assert.Equal(t, "https://img/c.jpg", *got.CoverURL)
	assert.Equal(t, sp("9"), got.ChapterLabel)
	assert.Equal(t, "2024-02-01T00:00:00.000Z", got.UpdatedAt)
}

func TestReplace(t *testing.T) {
	incoming := Library{
		"a:b": {Source: "a", NovelKey: "b", Status: "Completed"},
	}

	out := Replace(incoming)

	require.Len(t, out, 1)
	assert.Equal(t, "a:b", out["a:b"].ID)
	assert.Equal(t, string(Finished), out["a:b"].Status)
}

func TestParseImportMode(t *testing.T) {
	for in, want := range map[string]ImportMode{"": MergeMode, "merge": MergeMode, " Replace ": ReplaceMode} {
		got, err := ParseImportMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseImportMode("append")
	assert.Error(t, err)
}
