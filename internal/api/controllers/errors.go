package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/marine-watch/backend/internal/db/repository"
	"github.com/marine-watch/backend/internal/utils"
)

// respondError translates storage sentinels into transport errors and writes
// the standard error response.
func respondError(ctx *gin.Context, err error, logger *utils.Logger) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		err = utils.ErrNotFound
	case errors.Is(err, repository.ErrConflict):
		err = utils.ErrAlreadyExists
	case errors.Is(err, repository.ErrInvalidInput):
		err = utils.ErrBadRequest
	}
	utils.HandleError(ctx, err, logger)
}
