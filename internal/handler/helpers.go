package handler

import (
	"errors"
	"net/http"

	"github.com/ahmad-fahrudin/point-of-sales-backend/internal/service"
	"github.com/ahmad-fahrudin/point-of-sales-backend/pkg/response"

	"github.com/gin-gonic/gin"
)

// notFoundErrors are surfaced as 404 instead of the generic failure status.
var notFoundErrors = []error{
	service.ErrOrderNotFound,
	service.ErrSpendingNotFound,
	service.ErrProductNotFound,
	service.ErrCategoryNotFound,
	service.ErrReportNotFound,
}

// fail writes the uniform error envelope for a service failure. Not-found
// errors answer 404, malformed ids 400; everything else uses the given
// fallback status (400 for mutations/validated input, 500 for plain reads).
func fail(c *gin.Context, err error, fallback int) {
	status := fallback
	if errors.Is(err, service.ErrInvalidID) {
		status = http.StatusBadRequest
	} else {
		for _, target := range notFoundErrors {
			if errors.Is(err, target) {
				status = http.StatusNotFound
				break
			}
		}
	}
	c.JSON(status, response.Error(status, err.Error()))
}
