package handlers

import (
	"net/http"

	"github.com/k-iizuka000/ai-todo-sub007/internal/auth"
	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"
	"github.com/k-iizuka000/ai-todo-sub007/internal/dto"
	"github.com/k-iizuka000/ai-todo-sub007/internal/service"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags     *service.TagService
	projects *service.ProjectService
}

func NewTagHandler(tags *service.TagService, projects *service.ProjectService) *TagHandler {
	return &TagHandler{tags: tags, projects: projects}
}

// CreateTag godoc
// @Summary      Create a tag
// @Tags         tags
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateTagRequest  true  "Tag body"
// @Success      201   {object}  dto.TagResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /tags [post]
func (h *TagHandler) CreateTag(c *gin.Context) {
	var req dto.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tagToResponse(tag))
}

// ListTags godoc
// @Summary      List tags, most used first
// @Tags         tags
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListTagsResponse
// @Router       /tags [get]
func (h *TagHandler) ListTags(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.TagResponse, len(tags))
	for i, t := range tags {
		out[i] = tagToResponse(t)
	}
	c.JSON(http.StatusOK, dto.ListTagsResponse{Items: out})
}

// CreateProject godoc
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.CreateProjectRequest  true  "Project body"
// @Success      201   {object}  dto.ProjectResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /projects [post]
func (h *TagHandler) CreateProject(c *gin.Context) {
	var req dto.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p, err := h.projects.Create(c.Request.Context(), req.Name, req.Color, auth.UserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, projectToResponse(p))
}

// ListProjects godoc
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListProjectsResponse
// @Router       /projects [get]
func (h *TagHandler) ListProjects(c *gin.Context) {
	list, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.ProjectResponse, len(list))
	for i, p := range list {
		out[i] = projectToResponse(p)
	}
	c.JSON(http.StatusOK, dto.ListProjectsResponse{Items: out})
}

func tagToResponse(t dom.Tag) dto.TagResponse {
	return dto.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, UsageCount: t.UsageCount, CreatedAt: t.CreatedAt}
}

func projectToResponse(p dom.Project) dto.ProjectResponse {
	return dto.ProjectResponse{ID: p.ID, Name: p.Name, Color: p.Color, OwnerID: p.OwnerID, CreatedAt: p.CreatedAt}
}
