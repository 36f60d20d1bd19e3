package dto

import "time"

type CreateTagRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=60"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

type TagResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Color      string    `json:"color"`
	UsageCount int64     `json:"usage_count"`
	CreatedAt  time.Time `json:"created_at"`
}

type ListTagsResponse struct {
	Items []TagResponse `json:"items"`
}

type CreateProjectRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=120"`
	Color string `json:"color" binding:"omitempty,hexcolor"`
}

type ProjectResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ListProjectsResponse struct {
	Items []ProjectResponse `json:"items"`
}
