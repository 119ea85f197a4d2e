package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/noorfaiz5/Book-worm-hub/internal/application"
	"github.com/noorfaiz5/Book-worm-hub/pkg/apperror"
	"github.com/noorfaiz5/Book-worm-hub/pkg/response"
)

// maxPhotoBytes caps profile photo uploads.
const maxPhotoBytes = 5 << 20

type UserHandler struct {
	Svc    *application.UserService
	Logger logrus.FieldLogger
}

func NewUserHandler(svc *application.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name" binding:"omitempty,max=100"`
	PhotoURL    *string `json:"photo_url" binding:"omitempty,url"`
	YearlyGoal  *int    `json:"yearly_goal" binding:"omitempty,goal"`
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), currentUser(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentUser(c), application.UpdateProfileInput{
		DisplayName: req.DisplayName,
		PhotoURL:    req.PhotoURL,
		YearlyGoal:  req.YearlyGoal,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile updated", nil)
}

// UploadPhoto POST /api/profile/photo, multipart field "photo".
func (h *UserHandler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxPhotoBytes)
	fh, err := c.FormFile("photo")
	if err != nil {
		response.FromError(c, apperror.Field("photo", "required, at most 5 MB"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.FromError(c, apperror.Internal("cannot read upload", err))
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	u, err := h.Svc.UploadPhoto(c.Request.Context(), currentUser(c), f, fh.Filename, contentType)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "photo updated", nil)
}
