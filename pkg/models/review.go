package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

type Review struct {
	ID       string    `json:"id,omitempty"`
	Title    string    `json:"title"`
	Contents string    `json:"contents"`
	Rating   int       `json:"rating"`
	UserID   string    `json:"userid"`
	AnimeID  SubjectID `json:"animeId"`
	Time     int64     `json:"time"` // unix seconds
}

func (r Review) CreatedAt() time.Time {
	return time.Unix(r.Time, 0)
}

// AuthoredReview is a review resolved against the metadata service for the
// account page.
type AuthoredReview struct {
	Review
	AnimeTitle string `json:"animeTitle"`
}

// SubjectID is a subject id that may arrive as either a JSON string or a
// JSON number. It always encodes as a string.
type SubjectID string

func (s *SubjectID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = SubjectID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("subject id: %w", err)
	}
	*s = SubjectID(n.String())
	return nil
}

func (s SubjectID) String() string { return string(s) }
