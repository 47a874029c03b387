// Package response writes the JSON error envelope shared by all handlers.
package response

import (
	"log"
	"net/http"
	"strconv"

	"improtango-backend/pkg/apperr"

	"github.com/gin-gonic/gin"
)

// Lang picks the response language from ?lang= or Accept-Language.
func Lang(c *gin.Context) apperr.Lang {
	return apperr.ParseLang(c.Query("lang"), c.GetHeader("Accept-Language"))
}

// Error writes err as {"error": {...}} with the status for its kind and a
// localized message.
func Error(c *gin.Context, err error, flow apperr.Flow) {
	e := apperr.From(err)
	status := e.Kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}

	body := gin.H{
		"kind":    e.Kind,
		"message": apperr.Localize(e, Lang(c), flow),
	}
	if e.Field != "" {
		body["field"] = e.Field
	}
	if e.Kind == apperr.KindRateLimited {
		body["retry_after_seconds"] = e.RetryAfterSeconds
		c.Header("Retry-After", strconv.Itoa(e.RetryAfterSeconds))
	}
	c.JSON(status, gin.H{"error": body})
}

// BadRequest reports an undecodable request body.
func BadRequest(c *gin.Context, flow apperr.Flow) {
	Error(c, apperr.InvalidInput("body", "invalid request body"), flow)
}
