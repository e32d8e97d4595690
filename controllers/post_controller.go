package controllers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"inkwell/models"
	"inkwell/services"

	"github.com/gin-gonic/gin"
)

const maxImageSize = 10 << 20

type PostController struct {
	postService *services.PostService
}

func NewPostController(postService *services.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

// GetPosts godoc
// @Summary List published posts
// @Tags posts
// @Produce json
// @Param category query string false "Category name (partial, case-insensitive)"
// @Param keyword query string false "Matched against title, description and content"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(6)
// @Success 200 {object} models.PostListResponse
// @Failure 500 {object} map[string]string
// @Router /posts [get]
func (pc *PostController) GetPosts(c *gin.Context) {
	result, err := pc.postService.ListPublished(c.Request.Context(), services.PostQuery{
		Category: c.Query("category"),
		Keyword:  c.Query("keyword"),
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
	})
	if err != nil {
		respondError(c, err, "Post not found", "Failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (pc *PostController) GetAllPosts(c *gin.Context) {
	posts, err := pc.postService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Post not found", "Failed to fetch posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetPost godoc
// @Summary Get a published post
// @Tags posts
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.PostView
// @Failure 404 {object} map[string]string
// @Router /posts/{postId} [get]
func (pc *PostController) GetPost(c *gin.Context) {
	id, ok := parseID(c, "postId")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	post, err := pc.postService.GetPublishedByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Post not found", "Failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// @Summary Render a published post as HTML
// @Tags posts
// @Produce html
// @Param postId path int true "Post ID"
// @Success 200 {string} string
// @Failure 404 {object} map[string]string
// @Router /posts/{postId}/html [get]
func (pc *PostController) GetPostHTML(c *gin.Context) {
	id, ok := parseID(c, "postId")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	html, err := pc.postService.RenderPublished(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Post not found", "Failed to render post")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

func (pc *PostController) GetPostAdmin(c *gin.Context) {
	id, ok := parseID(c, "postId")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	post, err := pc.postService.GetByIDAdmin(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Post not found", "Failed to fetch post")
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary Create a post
// @Tags posts
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param category_id formData int true "Category ID"
// @Param description formData string false "Description"
// @Param content formData string false "Content"
// @Param status_id formData int true "Status ID"
// @Param imageFile formData file true "Cover image"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /posts [post]
func (pc *PostController) CreatePost(c *gin.Context) {
	var form models.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload, err := readImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := pc.postService.Create(c.Request.Context(), &form, upload)
	if err != nil {
		respondError(c, err, "Post not found", "Server could not create post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Created post successfully",
		"data":    post,
	})
}

func (pc *PostController) UpdatePost(c *gin.Context) {
	id, ok := parseID(c, "postId")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var form models.PostForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upload, err := readImage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := pc.postService.Update(c.Request.Context(), id, &form, upload)
	if err != nil {
		respondError(c, err, "Post not found", "Server could not update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Updated post successfully",
		"data":    post,
	})
}

func (pc *PostController) DeletePost(c *gin.Context) {
	id, ok := parseID(c, "postId")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if err := pc.postService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Post not found", "Server could not delete post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Deleted post successfully"})
}

func readImage(c *gin.Context) (*services.Upload, error) {
	return readFile(c, "imageFile")
}

// readFile returns the named multipart image, or nil when the request has none.
func readFile(c *gin.Context, field string) (*services.Upload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, fmt.Errorf("invalid %s: %v", field, err)
	}
	if header.Size > maxImageSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", field, maxImageSize)
	}

	data, err := readPart(header)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %v", field, err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("%s exceeds %d bytes", field, maxImageSize)
	}

	// The stored type is sniffed from the bytes; the part header is ignored.
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%s must be an image, got %s", field, contentType)
	}

	return &services.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func readPart(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(io.LimitReader(file, maxImageSize+1))
}
