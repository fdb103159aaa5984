package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"saveeat/internal/common"
	"saveeat/internal/models"
	"saveeat/internal/services"
)

// PostHandlers serves the dish feed, likes and comments
type PostHandlers struct {
	posts services.PostService
	media services.MediaService
}

func NewPostHandlers(posts services.PostService, media services.MediaService) *PostHandlers {
	return &PostHandlers{posts: posts, media: media}
}

// Register mounts read routes on optional (anonymous allowed) and writes on protected
func (h *PostHandlers) Register(optional, protected *echo.Group) {
	optional.GET("/posts", h.Feed)
	optional.GET("/posts/:id", h.GetPost)
	optional.GET("/posts/:id/comments", h.ListComments)

	protected.POST("/posts", h.CreatePost)
	protected.PATCH("/posts/:id", h.UpdatePost)
	protected.DELETE("/posts/:id", h.DeletePost)
	protected.POST("/posts/:id/like", h.Like)
	protected.DELETE("/posts/:id/like", h.Unlike)
	protected.POST("/posts/:id/comments", h.AddComment)
	protected.GET("/me/posts", h.MyPosts)
	protected.GET("/me/likes", h.MyLikes)
	protected.POST("/media", h.UploadMedia)
}

// Feed godoc
// @Summary Latest posts
// @Tags posts
// @Produce json
// @Success 200 {object} map[string][]models.Post
// @Router /v1/posts [get]
func (h *PostHandlers) Feed(c echo.Context) error {
	posts, err := h.posts.Feed(c.Request().Context(), viewer(c))
	if err != nil {
		return respondError(c, err, "Posts")
	}
	return c.JSON(http.StatusOK, map[string][]*models.Post{"posts": posts})
}

// GetPost godoc
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} models.Post
// @Router /v1/posts/{id} [get]
func (h *PostHandlers) GetPost(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	post, err := h.posts.Get(c.Request().Context(), id, viewer(c))
	if err != nil {
		return respondError(c, err, "Post")
	}
	return c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary Publish a dish
// @Tags posts
// @Accept json
// @Produce json
// @Param post body services.PostInput true "Post"
// @Success 201 {object} map[string]string
// @Router /v1/posts [post]
func (h *PostHandlers) CreatePost(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var in services.PostInput
	if err := c.Bind(&in); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	post, err := h.posts.Create(c.Request().Context(), userID, &in)
	if err != nil {
		return respondError(c, err, "Post")
	}
	return c.JSON(http.StatusCreated, map[string]string{"id": post.ID.String()})
}

// UpdatePost godoc
// @Summary Edit the caller's post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string]bool
// @Router /v1/posts/{id} [patch]
func (h *PostHandlers) UpdatePost(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var upd models.PostUpdate
	if err := c.Bind(&upd); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	if err := h.posts.Update(c.Request().Context(), userID, id, &upd); err != nil {
		return respondError(c, err, "Post")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// DeletePost godoc
// @Summary Delete the caller's post
// @Tags posts
// @Param id path string true "Post ID"
// @Success 204
// @Router /v1/posts/{id} [delete]
func (h *PostHandlers) DeletePost(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := h.posts.Delete(c.Request().Context(), userID, id); err != nil {
		return respondError(c, err, "Post")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PostHandlers) Like(c echo.Context) error {
	return h.toggleLike(c, h.posts.Like)
}

func (h *PostHandlers) Unlike(c echo.Context) error {
	return h.toggleLike(c, h.posts.Unlike)
}

func (h *PostHandlers) toggleLike(c echo.Context, op func(ctx context.Context, userID, postID uuid.UUID) error) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	if err := op(c.Request().Context(), userID, id); err != nil {
		return respondError(c, err, "Post")
	}
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// ListComments godoc
// @Summary Comments on a post, oldest first
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} map[string][]models.Comment
// @Router /v1/posts/{id}/comments [get]
func (h *PostHandlers) ListComments(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.posts.Comments(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err, "Post")
	}
	return c.JSON(http.StatusOK, map[string][]*models.Comment{"comments": comments})
}

// AddComment godoc
// @Summary Comment on a post
// @Tags posts
// @Accept json
// @Produce json
// @Param id path string true "Post ID"
// @Success 201 {object} models.Comment
// @Router /v1/posts/{id}/comments [post]
func (h *PostHandlers) AddComment(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}
	comment, err := h.posts.AddComment(c.Request().Context(), userID, id, req.Text)
	if err != nil {
		return respondError(c, err, "Post")
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *PostHandlers) MyPosts(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	posts, err := h.posts.UserPosts(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Posts")
	}
	return c.JSON(http.StatusOK, map[string][]*models.Post{"posts": posts})
}

func (h *PostHandlers) MyLikes(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	posts, err := h.posts.LikedPosts(c.Request().Context(), userID)
	if err != nil {
		return respondError(c, err, "Posts")
	}
	return c.JSON(http.StatusOK, map[string][]*models.Post{"posts": posts})
}

// UploadMedia godoc
// @Summary Upload an image or video for a post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or video"
// @Success 201 {object} models.MediaItem
// @Router /v1/media [post]
func (h *PostHandlers) UploadMedia(c echo.Context) error {
	userID, ok := currentUser(c)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	header, err := c.FormFile("file")
	if err != nil {
		return common.SendValidationError(c, "file", "is required")
	}
	file, err := header.Open()
	if err != nil {
		return common.SendClientError(c, "Could not read upload")
	}
	defer file.Close()

	item, err := h.media.Upload(c.Request().Context(), userID, &services.MediaUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	})
	if err != nil {
		return respondError(c, err, "Media")
	}
	return c.JSON(http.StatusCreated, item)
}
