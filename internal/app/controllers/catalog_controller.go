package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/middleware"
)

// CatalogController serves the read-only listings
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListModules lists every module instance
// @Summary List module instances
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.ModuleListResponse
// @Router /list/ [get]
func (c *CatalogController) ListModules(ctx *gin.Context) {
	resp, err := c.catalogService.ListModules(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListProfessors lists every professor with their overall rating
// @Summary List professors
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.ProfessorListResponse
// @Router /view/ [get]
func (c *CatalogController) ListProfessors(ctx *gin.Context) {
	resp, err := c.catalogService.ListProfessors(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// AverageRating reports one professor's rating across a module code. The
// selection comes from the query string, or from a JSON body when the query
// string carries neither field.
// @Summary Average rating of a professor in a module
// @Tags catalog
// @Produce plain
// @Param module_code query string false "Module code"
// @Param professor_id query string false "Professor id"
// @Success 200 {string} string "average of <name> (<id>) in module <name> (<code>) is: ***"
// @Failure 404 {string} string "Module or professor not found, or no ratings"
// @Failure 422 {string} string "Professor does not teach the module"
// @Router /average/ [get]
func (c *CatalogController) AverageRating(ctx *gin.Context) {
	var req dto.AverageRequest

	_, hasCode := ctx.GetQuery("module_code")
	_, hasProfessor := ctx.GetQuery("professor_id")

	var err error
	if hasCode || hasProfessor {
		err = middleware.BindQuery(ctx, &req)
	} else {
		err = middleware.BindJSON(ctx, &req)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	summary, err := c.catalogService.AverageRating(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.String(http.StatusOK, summary)
}
