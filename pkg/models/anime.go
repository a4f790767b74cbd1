package models

import (
	"strconv"
	"strings"
)

// Anime is a subject record owned by the Jikan v4 API. Summaries and
// detail pages share this shape; fields absent from a summary stay zero.
type Anime struct {
	MalID         int     `json:"mal_id"`
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	TitleJapanese string  `json:"title_japanese,omitempty"`
	Images        Images  `json:"images"`
	Trailer       Trailer `json:"trailer"`
	Score         float64 `json:"score"`
	Year          int     `json:"year"`
	Status        string  `json:"status"`
	Rating        string  `json:"rating"`
	Synopsis      string  `json:"synopsis"`
	Genres        []Genre `json:"genres"`
}

type Images struct {
	JPG ImageSet `json:"jpg"`
}

type ImageSet struct {
	ImageURL      string `json:"image_url"`
	LargeImageURL string `json:"large_image_url"`
}

type Trailer struct {
	EmbedURL string `json:"embed_url"`
}

type Genre struct {
	MalID int    `json:"mal_id"`
	Name  string `json:"name"`
}

// ID returns the subject id in the string form used by reviews and favorites.
func (a Anime) ID() string {
	return strconv.Itoa(a.MalID)
}

func (a Anime) GenreNames() string {
	names := make([]string, 0, len(a.Genres))
	for _, g := range a.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// Pagination is the per-query paging block returned by the metadata service.
type Pagination struct {
	CurrentPage     int  `json:"current_page"`
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
}

// AnimePage is one page of a top or search listing.
type AnimePage struct {
	Data       []Anime    `json:"data"`
	Pagination Pagination `json:"pagination"`
}
