package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"inkwell/models"
	"inkwell/query"

	"github.com/google/uuid"
)

const (
	EventPostCreated = "post_created"
	EventPostUpdated = "post_updated"
	EventPostDeleted = "post_deleted"
)

// Notifier is told about every successful post mutation.
type Notifier interface {
	Broadcast(messageType string, data interface{})
}

type PostQuery struct {
	Category string
	Keyword  string
	Page     string
	Limit    string
}

type PostService struct {
	posts    PostStore
	blobs    BlobStore
	notifier Notifier
	now      func() time.Time
}

func NewPostService(posts PostStore, blobs BlobStore, notifier Notifier) *PostService {
	return &PostService{
		posts:    posts,
		blobs:    blobs,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *PostService) ListPublished(ctx context.Context, q PostQuery) (*models.PostListResponse, error) {
	page := query.NewPageRequest(q.Page, q.Limit)
	criteria := PostCriteria{
		PublishedOnly: true,
		Filter:        query.BuildFilters(q.Category, q.Keyword),
		Page:          &page,
	}

	posts, err := s.posts.Find(ctx, criteria)
	if err != nil {
		return nil, err
	}

	total, err := s.posts.Count(ctx, criteria)
	if err != nil {
		return nil, err
	}

	meta := page.Result(total)
	return &models.PostListResponse{
		TotalPosts:   meta.TotalItems,
		TotalPages:   meta.TotalPages,
		CurrentPage:  meta.CurrentPage,
		Limit:        meta.Limit,
		Posts:        posts,
		NextPage:     meta.NextPage,
		PreviousPage: meta.PreviousPage,
	}, nil
}

func (s *PostService) ListAll(ctx context.Context) ([]models.PostView, error) {
	return s.posts.Find(ctx, PostCriteria{})
}

func (s *PostService) GetPublishedByID(ctx context.Context, id uint) (*models.PostView, error) {
	return s.posts.Get(ctx, id, true)
}

// RenderPublished returns the content of a published post as HTML.
func (s *PostService) RenderPublished(ctx context.Context, id uint) (string, error) {
	post, err := s.posts.Get(ctx, id, true)
	if err != nil {
		return "", err
	}
	return RenderMarkdown(post.Content)
}

func (s *PostService) GetByIDAdmin(ctx context.Context, id uint) (*models.PostView, error) {
	return s.posts.Get(ctx, id, false)
}

func (s *PostService) Create(ctx context.Context, form *models.PostForm, upload *Upload) (*models.Post, error) {
	if upload == nil || len(upload.Data) == 0 {
		return nil, fmt.Errorf("%w: image file is required", ErrValidation)
	}

	post, err := s.coerce(form)
	if err != nil {
		return nil, err
	}

	path, err := s.upload(ctx, upload)
	if err != nil {
		return nil, err
	}
	post.Image = s.blobs.PublicURL(path)
	post.Date = s.now()

	if err := s.posts.Create(ctx, post); err != nil {
		s.discard(ctx, path, err)
		return nil, err
	}

	s.notify(EventPostCreated, post)
	return post, nil
}

// Update rewrites every field and stamps the date. Without a new upload the
// image submitted with the form is kept, or the stored one if none was sent.
func (s *PostService) Update(ctx context.Context, id uint, form *models.PostForm, upload *Upload) (*models.Post, error) {
	existing, err := s.posts.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}

	post, err := s.coerce(form)
	if err != nil {
		return nil, err
	}
	post.ID = id
	post.Date = s.now()

	post.Image = strings.TrimSpace(form.Image)
	if post.Image == "" {
		post.Image = existing.Image
	}

	var uploaded string
	if upload != nil && len(upload.Data) > 0 {
		uploaded, err = s.upload(ctx, upload)
		if err != nil {
			return nil, err
		}
		post.Image = s.blobs.PublicURL(uploaded)
	}

	fields := []string{"title", "image", "category_id", "description", "content", "status_id", "date"}
	if err := s.posts.Update(ctx, post, fields); err != nil {
		if uploaded != "" {
			s.discard(ctx, uploaded, err)
		}
		return nil, err
	}

	s.notify(EventPostUpdated, post)
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id uint) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	s.notify(EventPostDeleted, map[string]uint{"id": id})
	return nil
}

func (s *PostService) coerce(form *models.PostForm) (*models.Post, error) {
	if form == nil {
		return nil, fmt.Errorf("%w: missing post fields", ErrValidation)
	}
	categoryID, err := strconv.Atoi(strings.TrimSpace(form.CategoryID))
	if err != nil {
		return nil, fmt.Errorf("%w: category_id must be an integer", ErrValidation)
	}
	statusID, err := strconv.Atoi(strings.TrimSpace(form.StatusID))
	if err != nil {
		return nil, fmt.Errorf("%w: status_id must be an integer", ErrValidation)
	}
	return &models.Post{
		Title:       form.Title,
		CategoryID:  categoryID,
		Description: form.Description,
		Content:     form.Content,
		StatusID:    statusID,
	}, nil
}

// upload stores the blob under posts/<unix millis>-<uuid>.
func (s *PostService) upload(ctx context.Context, upload *Upload) (string, error) {
	path := fmt.Sprintf("posts/%d-%s", s.now().UnixMilli(), uuid.NewString())
	stored, err := s.blobs.Upload(ctx, path, upload)
	if err != nil {
		log.Printf("Image upload failed for %s: %v", path, err)
		return "", err
	}
	return stored, nil
}

func (s *PostService) discard(ctx context.Context, path string, cause error) {
	discardBlob(ctx, s.blobs, path, cause)
}

func (s *PostService) notify(event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Broadcast(event, data)
	}
}
