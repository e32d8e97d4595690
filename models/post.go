package models

import "time"

// PublishedStatusID is the status row that makes a post visible to readers.
const PublishedStatusID = 2

type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Image       string    `json:"image"`
	CategoryID  int       `json:"category_id" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	Content     string    `json:"content" gorm:"type:text"`
	StatusID    int       `json:"status_id" gorm:"not null;index"`
	Date        time.Time `json:"date" gorm:"index"`
}

// PostView is a post joined with its category name and status text, the
// shape every read returns.
type PostView struct {
	Post
	CategoryName string `json:"category" gorm:"column:category"`
	Status       string `json:"status" gorm:"column:status"`
}

// PostForm is the multipart form sent on create and update. Ids arrive as
// text and are coerced to integers by the service.
type PostForm struct {
	Title       string `form:"title"`
	Image       string `form:"image"`
	CategoryID  string `form:"category_id"`
	Description string `form:"description"`
	Content     string `form:"content"`
	StatusID    string `form:"status_id"`
}

type PostListResponse struct {
	TotalPosts   int64      `json:"totalPosts"`
	TotalPages   int64      `json:"totalPages"`
	CurrentPage  int        `json:"currentPage"`
	Limit        int        `json:"limit"`
	Posts        []PostView `json:"posts"`
	NextPage     *int       `json:"nextPage,omitempty"`
	PreviousPage *int       `json:"previousPage,omitempty"`
}
