package models

import "time"

// CommunityPost is a feed entry ordered by a weighted engagement score.
type CommunityPost struct {
	ID        uint64    `db:"id"`
	AuthorID  uint64    `db:"author_id"`
	Body      string    `db:"body"`
	ImageURL  string    `db:"image_url"`
	Likes     int64     `db:"likes"`
	Upvotes   int64     `db:"upvotes"`
	Comments  int64     `db:"comments"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// EngagementScore weights reactions for feed ordering.
func (p *CommunityPost) EngagementScore() int64 {
	return p.Likes + 2*p.Upvotes + 3*p.Comments
}

// Comment belongs to a community post.
type Comment struct {
	ID        uint64    `db:"id"`
	PostID    uint64    `db:"post_id"`
	AuthorID  uint64    `db:"author_id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
}
