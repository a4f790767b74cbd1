package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"animehub/internal/apperror"
	"animehub/internal/auth"
	"animehub/internal/session"
	"animehub/pkg/models"
)

type loginForm struct {
	UserID   string `form:"userid" binding:"required"`
	Password string `form:"password" binding:"required"`
}

// accountForm is shared by sign-up and profile editing.
type accountForm struct {
	UserID       string `form:"userid" binding:"required"`
	Password     string `form:"password" binding:"required"`
	Confirm      string `form:"confirm"`
	Email        string `form:"email"`
	ProfileImage string `form:"profileImage"`
}

func (h *Handler) loginPage(c *gin.Context) {
	h.render(c, http.StatusOK, "login.tmpl", "Log in", gin.H{"UserID": ""})
}

func (h *Handler) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "login.tmpl", "Log in", gin.H{
			"UserID":  form.UserID,
			"Notices": []session.Notice{{Kind: "error", Text: "Enter your id and password."}},
		})
		return
	}

	s := auth.MustGetSession(c)
	if err := s.Login(c.Request.Context(), form.UserID, form.Password); err != nil {
		msg := "Login failed. Please try again."
		status := http.StatusBadGateway
		if apperror.IsAuth(err) {
			msg = "Wrong id or password."
			status = http.StatusUnauthorized
		}
		h.render(c, status, "login.tmpl", "Log in", gin.H{
			"UserID":  form.UserID,
			"Notices": []session.Notice{{Kind: "error", Text: msg}},
		})
		return
	}
	u, _ := s.Current()
	notice(c, "info", "Welcome, "+u.UserID+".")
	redirect(c, "/")
}

func (h *Handler) signupPage(c *gin.Context) {
	h.render(c, http.StatusOK, "signup.tmpl", "Sign up", nil)
}

func (h *Handler) signup(c *gin.Context) {
	var form accountForm
	fail := func(status int, msg string) {
		h.render(c, status, "signup.tmpl", "Sign up", gin.H{
			"Form":    form,
			"Notices": []session.Notice{{Kind: "error", Text: msg}},
		})
	}

	if err := c.ShouldBind(&form); err != nil {
		fail(http.StatusBadRequest, "Enter an id and a password.")
		return
	}
	form.UserID = strings.TrimSpace(form.UserID)
	form.Email = strings.TrimSpace(form.Email)
	if form.Password != form.Confirm {
		fail(http.StatusBadRequest, "Passwords do not match.")
		return
	}
	if !strings.Contains(form.Email, "@") {
		fail(http.StatusBadRequest, "Enter a valid email address.")
		return
	}

	err := auth.MustGetSession(c).Signup(c.Request.Context(), form.UserID, form.Password, form.Email, strings.TrimSpace(form.ProfileImage))
	if err != nil {
		if apperror.IsConflict(err) {
			fail(http.StatusConflict, "That id is already taken.")
			return
		}
		fail(http.StatusBadGateway, "Sign-up failed. Please try again.")
		return
	}
	notice(c, "info", "Sign-up complete. Please log in.")
	redirect(c, "/login")
}

func (h *Handler) logout(c *gin.Context) {
	auth.MustGetSession(c).Logout(c.Request.Context())
	redirect(c, "/")
}

func (h *Handler) mypage(c *gin.Context) {
	ctx := c.Request.Context()
	u, _ := auth.MustGetSession(c).Current()

	var notices []session.Notice
	mine, err := h.Reviews.ListForAuthor(ctx, u.UserID)
	if err != nil {
		mine = []models.AuthoredReview{}
		notices = append(notices, session.Notice{Kind: "error", Text: "Failed to load your reviews."})
	}
	favs := h.Favorites.Resolve(ctx, u.Favorite)

	h.render(c, http.StatusOK, "mypage.tmpl", "My page", gin.H{
		"MyReviews": mine,
		"Favorites": favs,
		"Notices":   notices,
	})
}

func (h *Handler) updateImage(c *gin.Context) {
	img := strings.TrimSpace(c.PostForm("profileImage"))
	err := auth.MustGetSession(c).UpdateCurrentUser(c.Request.Context(), models.UserPatch{ProfileImage: &img})
	if err != nil {
		notice(c, "error", "Failed to change the profile picture.")
	} else {
		notice(c, "info", "Profile picture changed.")
	}
	redirect(c, "/mypage")
}

func (h *Handler) removeFavorite(c *gin.Context) {
	if err := h.Favorites.Remove(c.Request.Context(), auth.MustGetSession(c), c.Param("id")); err != nil {
		notice(c, "error", "Failed to remove the favorite.")
	}
	redirect(c, "/mypage")
}

// editProfilePage shows the password check first and the full form once the
// password has been confirmed.
func (h *Handler) editProfilePage(c *gin.Context) {
	s := auth.MustGetSession(c)
	if !s.Verified() {
		h.render(c, http.StatusOK, "verify.tmpl", "Edit profile", nil)
		return
	}
	u, _ := s.Current()
	h.render(c, http.StatusOK, "profile.tmpl", "Edit profile", gin.H{
		"Form": accountForm{
			UserID:       u.UserID,
			Password:     u.Password,
			Confirm:      u.Password,
			Email:        u.Email,
			ProfileImage: u.ProfileImage,
		},
	})
}

func (h *Handler) verifyPassword(c *gin.Context) {
	s := auth.MustGetSession(c)
	u, _ := s.Current()
	if c.PostForm("password") != u.Password {
		notice(c, "error", "Password does not match.")
		redirect(c, "/edit-profile")
		return
	}
	s.SetVerified(true)
	redirect(c, "/edit-profile")
}

func (h *Handler) editProfile(c *gin.Context) {
	s := auth.MustGetSession(c)
	if !s.Verified() {
		redirect(c, "/edit-profile")
		return
	}
	cur, _ := s.Current()

	var form accountForm
	fail := func(status int, msg string) {
		h.render(c, status, "profile.tmpl", "Edit profile", gin.H{
			"Form":    form,
			"Notices": []session.Notice{{Kind: "error", Text: msg}},
		})
	}

	if err := c.ShouldBind(&form); err != nil {
		fail(http.StatusBadRequest, "Enter an id and a password.")
		return
	}
	form.UserID = strings.TrimSpace(form.UserID)
	form.Email = strings.TrimSpace(form.Email)
	form.ProfileImage = strings.TrimSpace(form.ProfileImage)
	if form.Password != form.Confirm {
		fail(http.StatusBadRequest, "Password confirmation does not match.")
		return
	}
	if !strings.Contains(form.Email, "@") {
		fail(http.StatusBadRequest, "Enter a valid email address.")
		return
	}

	ctx := c.Request.Context()
	if form.UserID != cur.UserID {
		ok, err := s.IDAvailable(ctx, form.UserID)
		if err != nil {
			fail(http.StatusBadGateway, "Something went wrong. Please try again.")
			return
		}
		if !ok {
			fail(http.StatusConflict, "That id is already in use.")
			return
		}
	}

	err := s.UpdateCurrentUser(ctx, models.UserPatch{
		UserID:       &form.UserID,
		Password:     &form.Password,
		Email:        &form.Email,
		ProfileImage: &form.ProfileImage,
	})
	if err != nil {
		fail(http.StatusBadGateway, "Update failed.")
		return
	}
	s.SetVerified(false)
	notice(c, "info", "Profile updated.")
	redirect(c, "/mypage")
}
