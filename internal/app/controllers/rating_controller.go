package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yigit/profrate/internal/app/models/dto"
	"github.com/yigit/profrate/internal/app/services"
	"github.com/yigit/profrate/internal/middleware"
)

// RatingController handles rating submissions
type RatingController struct {
	ratingService services.RatingService
	logger        zerolog.Logger
}

// NewRatingController creates a new RatingController
func NewRatingController(ratingService services.RatingService, logger zerolog.Logger) *RatingController {
	return &RatingController{ratingService: ratingService, logger: logger}
}

// Rate records the caller's rating of a professor in a module instance
// @Summary Rate a professor
// @Tags ratings
// @Accept json
// @Produce plain
// @Param request body dto.RateRequest true "Rating"
// @Success 200 {string} string "professor successfully rated"
// @Failure 400 {string} string "Rating is not a number or out of range"
// @Failure 404 {string} string "Module or professor not found"
// @Failure 409 {string} string "Already rated"
// @Failure 422 {string} string "Professor does not teach this module"
// @Router /rate/ [post]
func (c *RatingController) Rate(ctx *gin.Context) {
	var req dto.RateRequest
	if err := middleware.BindJSON(ctx, &req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid rating request payload")
		middleware.HandleAPIError(ctx, err)
		return
	}

	if err := c.ratingService.Rate(ctx.Request.Context(), middleware.GetIdentity(ctx), &req); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.String(http.StatusOK, "professor successfully rated")
}
