package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"vidtube/internal/auth"
	dom "vidtube/internal/domain"
	"vidtube/internal/dto"
	"vidtube/internal/response"
	"vidtube/internal/service"
)

// CookieConfig controls the session cookies set on login and refresh.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// UserHandler serves the /users routes.
type UserHandler struct {
	svc     *service.UserService
	uploads *Uploads
	cookies CookieConfig
}

func NewUserHandler(svc *service.UserService, uploads *Uploads, cookies CookieConfig) *UserHandler {
	return &UserHandler{svc: svc, uploads: uploads, cookies: cookies}
}

// Register godoc
// @Summary      Register a user
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullName    formData  string  true   "Full name"
// @Param        email       formData  string  true   "Email"
// @Param        username    formData  string  true   "Username"
// @Param        password    formData  string  true   "Password"
// @Param        avatar      formData  file    true   "Avatar image"
// @Param        coverImage  formData  file    false  "Cover image"
// @Success      201  {object}  response.Success{data=dto.UserResponse}
// @Failure      400  {object}  response.Failure
// @Failure      409  {object}  response.Failure
// @Failure      500  {object}  response.Failure
// @Router       /users/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	avatar, err := h.uploads.Save(c, "avatar")
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer h.uploads.Cleanup(avatar)
	cover, err := h.uploads.Save(c, "coverImage")
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer h.uploads.Cleanup(cover)

	u, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Username:   req.Username,
		FullName:   req.FullName,
		Email:      req.Email,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "User registered successfully", dto.NewUserResponse(u))
}

// Login godoc
// @Summary      Log in with username or email
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  response.Success{data=dto.LoginResponse}
// @Failure      400   {object}  response.Failure
// @Failure      401   {object}  response.Failure
// @Failure      404   {object}  response.Failure
// @Router       /users/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sess, err := h.svc.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		response.Fail(c, err)
		return
	}
	h.setSessionCookies(c, sess.Tokens)
	u := dto.NewUserResponse(sess.User)
	response.OK(c, http.StatusOK, "User logged in successfully", dto.LoginResponse{
		User:         &u,
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	})
}

// Logout godoc
// @Summary      Log out
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  response.Success
// @Failure      401  {object}  response.Failure
// @Router       /users/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.svc.Logout(c.Request.Context(), u.ID); err != nil {
		response.Fail(c, err)
		return
	}
	h.clearSessionCookies(c)
	response.OK(c, http.StatusOK, "User logged out", gin.H{})
}

// RefreshToken godoc
// @Summary      Rotate the session tokens
// @Description  The refresh token is read from the refreshToken cookie, or from the JSON body.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RefreshRequest  false  "Refresh token"
// @Success      200   {object}  response.Success{data=dto.LoginResponse}
// @Failure      401   {object}  response.Failure
// @Router       /users/refresh-token [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	presented, _ := c.Cookie(auth.RefreshTokenCookie)
	if presented == "" {
		var req dto.RefreshRequest
		_ = c.ShouldBindJSON(&req)
		presented = req.RefreshToken
	}
	sess, err := h.svc.RefreshSession(c.Request.Context(), presented)
	if err != nil {
		if errors.Is(err, dom.ErrTokenStale) {
			h.clearSessionCookies(c)
		}
		response.Fail(c, err)
		return
	}
	h.setSessionCookies(c, sess.Tokens)
	response.OK(c, http.StatusOK, "Access token refreshed", dto.LoginResponse{
		AccessToken:  sess.Tokens.AccessToken,
		RefreshToken: sess.Tokens.RefreshToken,
	})
}

// ChangePassword godoc
// @Summary      Change the current password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.ChangePasswordRequest  true  "Old and new password"
// @Success      200   {object}  response.Success
// @Failure      400   {object}  response.Failure
// @Failure      401   {object}  response.Failure
// @Router       /users/change-password [post]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.ChangePassword(c.Request.Context(), u.ID, req.OldPassword, req.NewPassword); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Password changed successfully", gin.H{})
}

// CurrentUser godoc
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  response.Success{data=dto.UserResponse}
// @Failure      401  {object}  response.Failure
// @Router       /users/current-user [get]
func (h *UserHandler) CurrentUser(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	response.OK(c, http.StatusOK, "Current user fetched successfully", dto.NewUserResponse(u))
}

// UpdateAccount godoc
// @Summary      Update full name and/or email
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.UpdateAccountRequest  true  "Fields to change"
// @Success      200   {object}  response.Success{data=dto.UserResponse}
// @Failure      400   {object}  response.Failure
// @Failure      409   {object}  response.Failure
// @Router       /users/update-account [patch]
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	updated, err := h.svc.UpdateAccount(c.Request.Context(), u.ID, req.FullName, req.Email)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Account details updated successfully", dto.NewUserResponse(updated))
}

// UpdateAvatar godoc
// @Summary      Replace the avatar
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        avatar  formData  file  true  "Avatar image"
// @Success      200  {object}  response.Success{data=dto.UserResponse}
// @Failure      400  {object}  response.Failure
// @Failure      500  {object}  response.Failure
// @Router       /users/avatar [patch]
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.replaceImage(c, "avatar", "Avatar updated successfully", h.svc.UpdateAvatar)
}

// UpdateCoverImage godoc
// @Summary      Replace the cover image
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        coverImage  formData  file  true  "Cover image"
// @Success      200  {object}  response.Success{data=dto.UserResponse}
// @Failure      400  {object}  response.Failure
// @Failure      500  {object}  response.Failure
// @Router       /users/cover-image [patch]
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.replaceImage(c, "coverImage", "Cover image updated successfully", h.svc.UpdateCoverImage)
}

func (h *UserHandler) replaceImage(c *gin.Context, field, message string,
	update func(ctx context.Context, userID int64, f *dom.UploadedFile) (dom.User, error),
) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	f, err := h.uploads.Save(c, field)
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer h.uploads.Cleanup(f)
	updated, err := update(c.Request.Context(), u.ID, f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, message, dto.NewUserResponse(updated))
}

// ChannelProfile godoc
// @Summary      Channel profile with subscriber counts
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Param        username  path      string  true  "Channel username"
// @Success      200  {object}  response.Success{data=dto.ChannelProfileResponse}
// @Failure      404  {object}  response.Failure
// @Router       /users/c/{username} [get]
func (h *UserHandler) ChannelProfile(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.svc.ChannelProfile(c.Request.Context(), c.Param("username"), u.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "User channel fetched successfully", dto.NewChannelProfileResponse(p))
}

// WatchHistory godoc
// @Summary      Watch history of the current user
// @Tags         users
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  response.Success{data=[]dto.WatchedVideoResponse}
// @Failure      401  {object}  response.Failure
// @Router       /users/history [get]
func (h *UserHandler) WatchHistory(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	list, err := h.svc.WatchHistory(c.Request.Context(), u.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Watch history fetched successfully", dto.NewWatchHistoryResponse(list))
}

func (h *UserHandler) setSessionCookies(c *gin.Context, pair auth.TokenPair) {
	c.SetCookie(auth.AccessTokenCookie, pair.AccessToken, int(h.cookies.AccessTTL.Seconds()), "/", "", h.cookies.Secure, true)
	c.SetCookie(auth.RefreshTokenCookie, pair.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), "/", "", h.cookies.Secure, true)
}

func (h *UserHandler) clearSessionCookies(c *gin.Context) {
	c.SetCookie(auth.AccessTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(auth.RefreshTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
}
