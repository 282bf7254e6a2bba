package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/foodgram-backend/internal/app/service"
)

// CatalogController serves tags and ingredients. Both lists are
// unpaginated.
type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListTags GET /api/tags/
func (ctrl *CatalogController) ListTags(c *gin.Context) {
	tags, err := ctrl.catalogService.ListTags(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "tags")
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTag GET /api/tags/:id/
func (ctrl *CatalogController) GetTag(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	tag, err := ctrl.catalogService.GetTag(id)
	if err != nil {
		respondServiceError(c, err, "tag")
		return
	}
	c.JSON(http.StatusOK, tag)
}
