// Package serializer reshapes stored records into their read-path JSON
// form. The functions are pure and never fail.
package serializer

import "github.com/aanand-mishra/songs-api/internal/types"

// Song is the read shape of a song: no artist, no timestamps.
type Song struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Length    int    `json:"length"`
	PlayCount int    `json:"play_count"`
}

func FormatSong(song types.Song) Song {
	return Song{
		ID:        song.ID,
		Title:     song.Title,
		Length:    song.Length,
		PlayCount: song.PlayCount,
	}
}

// FormatSongs keeps the input order. The result is never nil, so an
// empty collection encodes as [] rather than null.
func FormatSongs(songs []types.Song) []Song {
	formatted := make([]Song, 0, len(songs))
	for _, song := range songs {
		formatted = append(formatted, FormatSong(song))
	}
	return formatted
}
