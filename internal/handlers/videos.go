package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vidtube/internal/dto"
	"vidtube/internal/response"
	"vidtube/internal/service"
)

type VideoHandler struct {
	svc     *service.VideoService
	uploads *Uploads
}

func NewVideoHandler(svc *service.VideoService, uploads *Uploads) *VideoHandler {
	return &VideoHandler{svc: svc, uploads: uploads}
}

// List godoc
// @Summary      List published videos
// @Tags         videos
// @Produce      json
// @Security     CookieAuth
// @Param        page      query     int     false  "Page, from 1"
// @Param        limit     query     int     false  "Page size, max 100"
// @Param        query     query     string  false  "Search in title and description"
// @Param        sortBy    query     string  false  "createdAt, views, duration or title"
// @Param        sortType  query     string  false  "asc or desc"
// @Param        userId    query     int     false  "Only videos of this owner"
// @Success      200  {object}  response.Success{data=dto.ListVideosResponse}
// @Failure      400  {object}  response.Failure
// @Router       /videos [get]
func (h *VideoHandler) List(c *gin.Context) {
	var q dto.ListVideosQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	f := q.Filter().Normalize()
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Videos fetched successfully", dto.ListVideosResponse{
		Items: dto.NewVideoResponses(list),
		Page:  f.Page,
		Limit: f.Limit,
	})
}

// Publish godoc
// @Summary      Publish a video
// @Tags         videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        title        formData  string  true   "Title"
// @Param        description  formData  string  true   "Description"
// @Param        duration     formData  number  false  "Duration in seconds"
// @Param        videoFile    formData  file    true   "Video file"
// @Param        thumbnail    formData  file    true   "Thumbnail image"
// @Success      201  {object}  response.Success{data=dto.VideoResponse}
// @Failure      400  {object}  response.Failure
// @Failure      500  {object}  response.Failure
// @Router       /videos [post]
func (h *VideoHandler) Publish(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.PublishVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	video, err := h.uploads.Save(c, "videoFile")
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer h.uploads.Cleanup(video)
	thumb, err := h.uploads.Save(c, "thumbnail")
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer h.uploads.Cleanup(thumb)

	v, err := h.svc.Publish(c.Request.Context(), u.ID, service.PublishInput{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		VideoFile:   video,
		Thumbnail:   thumb,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Video published successfully", dto.NewVideoResponse(v))
}

// GetByID godoc
// @Summary      Get a video and count the view
// @Tags         videos
// @Produce      json
// @Security     CookieAuth
// @Param        videoId  path      int  true  "Video ID"
// @Success      200  {object}  response.Success{data=dto.VideoResponse}
// @Failure      400  {object}  response.Failure
// @Failure      404  {object}  response.Failure
// @Router       /videos/{videoId} [get]
func (h *VideoHandler) GetByID(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	v, err := h.svc.Get(c.Request.Context(), id, u.ID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Video fetched successfully", dto.NewVideoResponse(v))
}

// Update godoc
// @Summary      Update title, description or thumbnail
// @Tags         videos
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        videoId      path      int     true   "Video ID"
// @Param        title        formData  string  false  "Title"
// @Param        description  formData  string  false  "Description"
// @Param        thumbnail    formData  file    false  "Thumbnail image"
// @Success      200  {object}  response.Success{data=dto.VideoResponse}
// @Failure      400  {object}  response.Failure
// @Failure      403  {object}  response.Failure
// @Failure      404  {object}  response.Failure
// @Router       /videos/{videoId} [patch]
func (h *VideoHandler) Update(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	var req dto.UpdateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	thumb, err := h.uploads.Save(c, "thumbnail")
	if err != nil {
		response.Fail(c, err)
		return
	}
	defer h.uploads.Cleanup(thumb)

	v, err := h.svc.Update(c.Request.Context(), u.ID, id, service.VideoPatch{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   thumb,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Video updated successfully", dto.NewVideoResponse(v))
}

// Delete godoc
// @Summary      Delete a video
// @Tags         videos
// @Produce      json
// @Security     CookieAuth
// @Param        videoId  path      int  true  "Video ID"
// @Success      200  {object}  response.Success
// @Failure      403  {object}  response.Failure
// @Failure      404  {object}  response.Failure
// @Router       /videos/{videoId} [delete]
func (h *VideoHandler) Delete(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), u.ID, id); err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Video deleted successfully", gin.H{})
}

// TogglePublish godoc
// @Summary      Publish or unpublish a video
// @Tags         videos
// @Produce      json
// @Security     CookieAuth
// @Param        videoId  path      int  true  "Video ID"
// @Success      200  {object}  response.Success{data=dto.VideoResponse}
// @Failure      403  {object}  response.Failure
// @Failure      404  {object}  response.Failure
// @Router       /videos/toggle/publish/{videoId} [patch]
func (h *VideoHandler) TogglePublish(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	v, err := h.svc.TogglePublish(c.Request.Context(), u.ID, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Publish status toggled", dto.NewVideoResponse(v))
}
