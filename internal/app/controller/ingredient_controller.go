package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListIngredients GET /api/ingredients/?name=<prefix>
func (ctrl *CatalogController) ListIngredients(c *gin.Context) {
	ingredients, err := ctrl.catalogService.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondServiceError(c, err, "ingredients")
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// GetIngredient GET /api/ingredients/:id/
func (ctrl *CatalogController) GetIngredient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ingredient, err := ctrl.catalogService.GetIngredient(id)
	if err != nil {
		respondServiceError(c, err, "ingredient")
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
