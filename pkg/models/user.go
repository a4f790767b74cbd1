package models

// User mirrors the record kept by the user CRUD service. Field names follow
// the service's wire format. Passwords are stored and compared as plaintext
// by that service; nothing here hashes them.
type User struct {
	ID           string   `json:"id,omitempty"`
	UserID       string   `json:"userid"`
	Password     string   `json:"password"`
	Email        string   `json:"email"`
	ProfileImage string   `json:"profileImage"`
	Favorite     []string `json:"favorite"`
}

func (u User) HasFavorite(subjectID string) bool {
	for _, id := range u.Favorite {
		if id == subjectID {
			return true
		}
	}
	return false
}

// UserPatch holds the fields to overwrite on the current user. Nil fields
// are left untouched.
type UserPatch struct {
	UserID       *string
	Password     *string
	Email        *string
	ProfileImage *string
	Favorite     *[]string
}

// Apply returns u with the patch merged in. The favorites slice is copied so
// callers never share backing arrays with the session's copy.
func (u User) Apply(p UserPatch) User {
	out := u
	if p.UserID != nil {
		out.UserID = *p.UserID
	}
	if p.Password != nil {
		out.Password = *p.Password
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.ProfileImage != nil {
		out.ProfileImage = *p.ProfileImage
	}
	src := u.Favorite
	if p.Favorite != nil {
		src = *p.Favorite
	}
	out.Favorite = append(make([]string, 0, len(src)), src...)
	return out
}
