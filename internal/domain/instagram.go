package domain

import "context"

// InstagramMedia mirrors the fields requested from the Graph API media edge.
type InstagramMedia struct {
	ID           string `json:"id"`
	Caption      string `json:"caption,omitempty"`
	MediaType    string `json:"media_type"`
	MediaURL     string `json:"media_url"`
	Permalink    string `json:"permalink"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
}

type InstagramFeed struct {
	Items    []InstagramMedia `json:"items"`
	Fallback bool             `json:"fallback"`
}

type InstagramUsecase interface {
	RecentMedia(ctx context.Context) (*InstagramFeed, error)
}
