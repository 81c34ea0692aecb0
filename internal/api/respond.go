// Package api binds the facade to a gin router, implementing the
// control surface's REST routes. apierr.Kind is mapped to an HTTP
// status exactly once, here, at the boundary.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sifis-home/netspot-control/internal/apierr"
)

func statusForKind(k apierr.Kind) int {
	switch k {
	case apierr.NotFound:
		return http.StatusNotFound
	case apierr.InvalidRequest:
		return http.StatusBadRequest
	case apierr.PersistenceUnexpected, apierr.StartupFatal:
		return http.StatusInternalServerError
	case apierr.ProbeLifecycleTransient, apierr.DeliveryTransient:
		return http.StatusServiceUnavailable
	case apierr.DecodeSkip:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// fail writes {"error": ...} with the status apierr.Kind maps to, or
// 500 for an error that never went through apierr.
func fail(c *gin.Context, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		c.JSON(statusForKind(apiErr.Kind), gin.H{"error": apiErr.Err.Error()})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
