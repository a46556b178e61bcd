package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestSongParamsApply(t *testing.T) {
	base := Song{ID: 7, Title: "Raspberry Beret", Length: 345, PlayCount: 34, ArtistID: 1}

	tests := []struct {
		name          string
		params        SongParams
		want          Song
		artistChanged bool
	}{
		{
			name:   "empty params leave the song untouched",
			params: SongParams{},
			want:   base,
		},
		{
			name:   "only length changes",
			params: SongParams{Length: ptr(323)},
			want:   Song{ID: 7, Title: "Raspberry Beret", Length: 323, PlayCount: 34, ArtistID: 1},
		},
		{
			name:   "zero values are applied when supplied",
			params: SongParams{Title: ptr(""), PlayCount: ptr(0)},
			want:   Song{ID: 7, Title: "", Length: 345, PlayCount: 0, ArtistID: 1},
		},
		{
			name:          "new artist is reported",
			params:        SongParams{ArtistID: ptr(int64(2))},
			want:          Song{ID: 7, Title: "Raspberry Beret", Length: 345, PlayCount: 34, ArtistID: 2},
			artistChanged: true,
		},
		{
			name:   "same artist is not a change",
			params: SongParams{ArtistID: ptr(int64(1))},
			want:   base,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			song := base
			changed := tt.params.Apply(&song)
			assert.Equal(t, tt.want, song)
			assert.Equal(t, tt.artistChanged, changed)
		})
	}
}
