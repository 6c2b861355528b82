package model

import "time"

// Blog is a post owned by the creating user.  Only the owner may edit or
// delete it.
type Blog struct {
	ID        string    `json:"id"`              // blogs.id (UUID v4)
	UserID    string    `json:"userId"`          // blogs.user_id
	Title     string    `json:"title"`           // blogs.title
	Body      string    `json:"body"`            // blogs.body
	Image     *string   `json:"image,omitempty"` // blogs.image (optional)
	CreatedAt time.Time `json:"createdAt"`       // blogs.created_at
	UpdatedAt time.Time `json:"updatedAt"`       // blogs.updated_at
}

// Comment belongs to a blog and a user.  Edit is owner-only; delete is
// owner-or-admin.
type Comment struct {
	ID        string    `json:"id"`              // comments.id (UUID v4)
	BlogID    string    `json:"blogId"`          // comments.blog_id
	UserID    string    `json:"userId"`          // comments.user_id
	Comment   string    `json:"comment"`         // comments.comment
	Image     *string   `json:"image,omitempty"` // comments.image (optional)
	CreatedAt time.Time `json:"createdAt"`       // comments.created_at
	UpdatedAt time.Time `json:"updatedAt"`       // comments.updated_at
}
