// Package catalog turns the list page's search, filter, sort and page state
// into a request against the metadata service. The URL query string is the
// only place that state lives; FromValues and Values convert between the two.
package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

const PageSize = 12

const (
	SortNone  = ""
	SortTitle = "title"
	SortScore = "score"
)

type Option struct {
	Value string
	Label string
}

// Genres lists the genre ids accepted by the search endpoint.
var Genres = []Option{
	{"1", "Action"},
	{"2", "Adventure"},
	{"4", "Comedy"},
	{"8", "Drama"},
	{"10", "Fantasy"},
	{"22", "Romance"},
	{"24", "Sci-Fi"},
	{"36", "Slice of Life"},
	{"30", "Sports"},
	{"14", "Horror"},
}

var Ratings = []Option{
	{"g", "G - All Ages"},
	{"pg", "PG - Children"},
	{"pg13", "PG-13"},
	{"r17", "R - 17+"},
	{"r", "R+"},
}

var Sorts = []Option{
	{SortNone, "Popularity"},
	{SortTitle, "Title (A-Z)"},
	{SortScore, "Score (high first)"},
}

// Query is the list page state.
type Query struct {
	Q      string
	Genre  string
	Rating string
	Sort   string
	Page   int
}

// FromValues decodes q, genre, rating, sort and page. Unknown vocabulary
// values decode to empty and a missing or invalid page decodes to 1.
func FromValues(v url.Values) Query {
	q := Query{
		Q:      strings.TrimSpace(v.Get("q")),
		Genre:  known(Genres, v.Get("genre")),
		Rating: known(Ratings, v.Get("rating")),
		Sort:   known(Sorts, v.Get("sort")),
		Page:   1,
	}
	if p, err := strconv.Atoi(v.Get("page")); err == nil && p >= 1 {
		q.Page = p
	}
	return q
}

// Values encodes q, omitting empty fields.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Q != "" {
		v.Set("q", q.Q)
	}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	if q.Rating != "" {
		v.Set("rating", q.Rating)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	v.Set("page", strconv.Itoa(q.page()))
	return v
}

// URL returns the list page URL for q.
func (q Query) URL() string {
	return "/?" + q.Values().Encode()
}

// IsDefault reports whether q has no search, filter or sort applied.
func (q Query) IsDefault() bool {
	return q.Q == "" && q.Genre == "" && q.Rating == "" && q.Sort == ""
}

func (q Query) WithSearch(term string) Query {
	q.Q = strings.TrimSpace(term)
	q.Page = 1
	return q
}

func (q Query) WithGenre(genre string) Query {
	q.Genre = known(Genres, genre)
	q.Page = 1
	return q
}

func (q Query) WithRating(rating string) Query {
	q.Rating = known(Ratings, rating)
	q.Page = 1
	return q
}

func (q Query) WithSort(sort string) Query {
	q.Sort = known(Sorts, sort)
	q.Page = 1
	return q
}

// WithFilters applies a whole filter form submission at once.
func (q Query) WithFilters(genre, rating, sort string) Query {
	return q.WithGenre(genre).WithRating(rating).WithSort(sort)
}

func (q Query) WithPage(page int) Query {
	if page < 1 {
		page = 1
	}
	q.Page = page
	return q
}

func (q Query) Reset() Query {
	return Query{Page: 1}
}

func (q Query) page() int {
	if q.Page < 1 {
		return 1
	}
	return q.Page
}

// Request is the outbound call a query maps to.
type Request struct {
	Endpoint string // "top" or "search"
	Path     string
	Params   url.Values
}

func (q Query) Request() Request {
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.page()))
	params.Set("limit", strconv.Itoa(PageSize))

	if q.IsDefault() {
		return Request{Endpoint: "top", Path: "/top/anime", Params: params}
	}

	params.Set("q", q.Q)
	params.Set("sfw", "true")
	if q.Genre != "" {
		params.Set("genres", q.Genre)
	}
	if q.Rating != "" {
		params.Set("rating", q.Rating)
	}
	switch q.Sort {
	case SortTitle:
		params.Set("order_by", "title")
		params.Set("sort", "asc")
	case SortScore:
		params.Set("order_by", "score")
		params.Set("sort", "desc")
	}
	return Request{Endpoint: "search", Path: "/anime", Params: params}
}

func known(opts []Option, v string) string {
	v = strings.TrimSpace(v)
	for _, o := range opts {
		if o.Value == v {
			return v
		}
	}
	return ""
}

// Label returns the display label for value, or "" when unknown.
func Label(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return ""
}
