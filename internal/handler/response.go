package handler

import "github.com/gin-gonic/gin"

// Meta carries response metadata alongside the payload.
type Meta struct {
	Cached bool `json:"cached"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Every endpoint answers with the same envelope: {success, data, meta}
// on success, {success, error} on failure.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data interface{}, cached bool) {
	c.JSON(200, envelope{
		Success: true,
		Data:    data,
		Meta:    &Meta{Cached: cached},
	})
}

func respondError(c *gin.Context, status int, kind, message string) {
	c.JSON(status, envelope{
		Success: false,
		Error:   &errorBody{Kind: kind, Message: message},
	})
}
