package serializer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aanand-mishra/songs-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSong(t *testing.T) {
	song := types.Song{
		ID:        1,
		Title:     "Raspberry Beret",
		Length:    345,
		PlayCount: 34,
		ArtistID:  9,
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(FormatSong(song))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Raspberry Beret","length":345,"play_count":34}`, string(data))
}

func TestFormatSongs(t *testing.T) {
	tests := []struct {
		name  string
		songs []types.Song
		want  string
	}{
		{"nil", nil, `[]`},
		{"empty", []types.Song{}, `[]`},
		{
			name: "keeps order",
			songs: []types.Song{
				{ID: 3, Title: "Kiss", Length: 2301, PlayCount: 2300000},
				{ID: 1, Title: "Raspberry Beret", Length: 345, PlayCount: 34},
			},
			want: `[
				{"id":3,"title":"Kiss","length":2301,"play_count":2300000},
				{"id":1,"title":"Raspberry Beret","length":345,"play_count":34}
			]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(FormatSongs(tt.songs))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}
