package rest

import (
	"time"

	"github.com/jupiterclapton/reelfeed/internal/core/domain"
)

// DTOs de sortie : on ne laisse jamais fuiter les structs du domaine sur le
// wire, le mapping explicite protège le contrat JSON des refactors internes

type feedResponse struct {
	Content    []contentDTO `json:"content"`
	NextCursor *string      `json:"nextCursor"`
	HasNext    bool         `json:"hasNext"`
}

type contentDTO struct {
	ID           string        `json:"id"`
	CreatorID    string        `json:"creatorId"`
	Caption      string        `json:"caption"`
	MediaURL     string        `json:"mediaUrl"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	CreatedAt    time.Time     `json:"createdAt"`
	Stats        statsDTO      `json:"stats"`
	Subtitles    []subtitleDTO `json:"subtitles,omitempty"`
	Creator      *creatorDTO   `json:"creator,omitempty"`
}

type statsDTO struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Saves    int64 `json:"saves"`
	Shares   int64 `json:"shares"`
	Comments int64 `json:"comments"`
}

type subtitleDTO struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

type creatorDTO struct {
	ID          string `json:"id"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`
}

func toFeedResponse(page *domain.FeedPage) feedResponse {
	resp := feedResponse{
		Content: make([]contentDTO, len(page.Items)),
		HasNext: page.HasNext,
	}
	if page.NextCursor != "" {
		cursor := page.NextCursor
		resp.NextCursor = &cursor
	}
	for i, item := range page.Items {
		resp.Content[i] = toContentDTO(item)
	}
	return resp
}

func toContentDTO(item domain.ContentSummary) contentDTO {
	dto := contentDTO{
		ID:           item.ID,
		CreatorID:    item.CreatorID,
		Caption:      item.Caption,
		MediaURL:     item.MediaURL,
		ThumbnailURL: item.ThumbnailURL,
		CreatedAt:    item.CreatedAt,
		Stats: statsDTO{
			Views:    item.Counters.Views,
			Likes:    item.Counters.Likes,
			Saves:    item.Counters.Saves,
			Shares:   item.Counters.Shares,
			Comments: item.Counters.Comments,
		},
	}
	for _, sub := range item.Subtitles {
		dto.Subtitles = append(dto.Subtitles, subtitleDTO{Language: sub.Language, URL: sub.URL})
	}
	if item.Creator != nil {
		dto.Creator = &creatorDTO{
			ID:          item.Creator.ID,
			Handle:      item.Creator.Handle,
			DisplayName: item.Creator.DisplayName,
			AvatarURL:   item.Creator.AvatarURL,
		}
	}
	return dto
}
