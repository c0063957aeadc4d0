package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHashtags(t *testing.T) {
	tests := []struct {
		name     string
		caption  string
		expected []string
	}{
		{"None", "just a clip", []string{}},
		{"Lowercased in order", "Sunset #Beach vibes #travel #beach", []string{"beach", "travel", "beach"}},
		{"Punctuation ends tag", "#go! and #rust, #c_lang.", []string{"go", "rust", "c_lang"}},
		{"Unicode letters", "#café #日本", []string{"café", "日本"}},
		{"Bare hash ignored", "# nothing", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractHashtags(tt.caption))
		})
	}
}

func TestCountHashtags(t *testing.T) {
	lists := [][]string{
		{"go", "music"},
		{"Music", "food"},
		{"travel", ""},
		{"food", "music"},
	}

	assert.Equal(t, []TagCount{
		{Tag: "music", Count: 3},
		{Tag: "food", Count: 2},
		{Tag: "go", Count: 1},
		{Tag: "travel", Count: 1},
	}, CountHashtags(lists, 0))

	assert.Equal(t, []TagCount{{Tag: "music", Count: 3}}, CountHashtags(lists, 1))
	assert.Empty(t, CountHashtags(nil, 10))
}

func TestTrendingHashtags(t *testing.T) {
	snaps := []HighlightSnapshot{
		{Hashtags: []string{"a", "b"}},
		{Hashtags: []string{"b"}},
		{},
	}

	assert.Equal(t, []TagCount{{Tag: "b", Count: 2}, {Tag: "a", Count: 1}}, TrendingHashtags(snaps, DefaultTrendingLimit))
}
