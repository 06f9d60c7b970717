package marketplace

import (
	"encoding/json"
	"time"

	"podmatch/internal/session"
)

// Category groups podcasts or experts.
type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
}

// PodcasterProfile is a podcaster's public profile.
type PodcasterProfile struct {
	ID          int64           `json:"id"`
	User        json.RawMessage `json:"user,omitempty"`
	Bio         string          `json:"bio"`
	Website     string          `json:"website,omitempty"`
	SocialLinks json.RawMessage `json:"social_links,omitempty"`
	Podcasts    []Podcast       `json:"podcasts,omitempty"`
	CreatedAt   time.Time       `json:"created_at,omitzero"`
	UpdatedAt   time.Time       `json:"updated_at,omitzero"`
}

// Podcast is one podcast listing.
type Podcast struct {
	ID             int64             `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Image          string            `json:"image,omitempty"`
	Link           string            `json:"link,omitempty"`
	Owner          *PodcasterProfile `json:"owner,omitempty"`
	Category       *Category         `json:"category,omitempty"`
	Views          int               `json:"views"`
	AverageRating  *float64          `json:"average_rating,omitempty"`
	TotalBookmarks int               `json:"total_bookmarks"`
	IsApproved     bool              `json:"is_approved"`
	IsFeatured     bool              `json:"is_featured,omitempty"`
	CreatedAt      time.Time         `json:"created_at,omitzero"`
	UpdatedAt      time.Time         `json:"updated_at,omitzero"`
}

// PodcastInput creates or updates a podcast.
type PodcastInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link,omitempty"`
	CategoryID  int64  `json:"category_id,omitempty"`
}

// PodcastFilter narrows ListPodcasts.
type PodcastFilter struct {
	CategoryID int64
	Ordering   string
}

// ExpertProfile is an expert's public profile.
type ExpertProfile struct {
	ID                int64         `json:"id"`
	User              *session.User `json:"user,omitempty"`
	Name              string        `json:"name"`
	Bio               string        `json:"bio"`
	Expertise         string        `json:"expertise,omitempty"`
	Categories        []Category    `json:"categories,omitempty"`
	ExperienceYears   int           `json:"experience_years"`
	Website           string        `json:"website,omitempty"`
	ProfilePictureURL *string       `json:"profile_picture_url,omitempty"`
	IsApproved        bool          `json:"is_approved"`
	IsFeatured        bool          `json:"is_featured"`
	TotalViews        int           `json:"total_views"`
	TotalBookmarks    int           `json:"total_bookmarks"`
	CreatedAt         time.Time     `json:"created_at,omitzero"`
}

// ExpertInput creates or updates the current user's expert profile.
type ExpertInput struct {
	Name            string  `json:"name"`
	Bio             string  `json:"bio"`
	Expertise       string  `json:"expertise,omitempty"`
	ExperienceYears int     `json:"experience_years,omitempty"`
	Website         string  `json:"website,omitempty"`
	CategoryIDs     []int64 `json:"category_ids,omitempty"`
}

// PodcasterInput creates or updates the current user's podcaster profile.
type PodcasterInput struct {
	Bio         string            `json:"bio"`
	Website     string            `json:"website,omitempty"`
	SocialLinks map[string]string `json:"social_links,omitempty"`
}

// ExpertFilter narrows ListExperts.
type ExpertFilter struct {
	Search     string
	CategoryID int64
}

// Rating scores a podcast or an expert from 1 to 5.
type Rating struct {
	ID        int64     `json:"id"`
	User      int64     `json:"user"`
	Podcast   *int64    `json:"podcast"`
	Expert    *int64    `json:"expert"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Bookmark saves a podcast or an expert for later.
type Bookmark struct {
	ID      int64  `json:"id"`
	Podcast *int64 `json:"podcast"`
	Expert  *int64 `json:"expert"`
}

// Collaboration is a request from one user to another to work together on a
// podcast.
type Collaboration struct {
	ID        int64     `json:"id"`
	Sender    int64     `json:"sender"`
	Receiver  int64     `json:"receiver"`
	Podcast   *int64    `json:"podcast"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// MessageUser is the compact user shape used by messaging endpoints.
type MessageUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Message is one direct message.
type Message struct {
	ID             int64       `json:"id"`
	Sender         MessageUser `json:"sender"`
	Receiver       MessageUser `json:"receiver"`
	Content        string      `json:"content"`
	Timestamp      time.Time   `json:"timestamp"`
	IsRead         bool        `json:"is_read"`
	ReadAt         *time.Time  `json:"read_at,omitempty"`
	AttachmentName string      `json:"attachment_name,omitempty"`
	AttachmentURL  *string     `json:"attachment_url,omitempty"`
}

// Conversation summarizes the thread with one other user.
type Conversation struct {
	User        MessageUser `json:"user"`
	LastMessage Message     `json:"last_message"`
	UnreadCount int         `json:"unread_count"`
}

// Chat is the full message history with one other user, oldest first.
type Chat struct {
	Messages  []Message   `json:"messages"`
	OtherUser MessageUser `json:"other_user"`
}

// LastID returns the newest message id, or 0 for an empty chat.
func (c Chat) LastID() int64 {
	if len(c.Messages) == 0 {
		return 0
	}
	return c.Messages[len(c.Messages)-1].ID
}
