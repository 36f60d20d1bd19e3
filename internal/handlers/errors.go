package handlers

import (
	"errors"
	"net/http"

	dom "github.com/k-iizuka000/ai-todo-sub007/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError maps the domain error taxonomy onto HTTP statuses. The
// services never produce transport-specific responses themselves.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dom.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, dom.ErrValidation), errors.Is(err, dom.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, dom.ErrConflict), errors.Is(err, dom.ErrConstraint):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
