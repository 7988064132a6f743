package controllers

import (
	"net/http"
)

// PostsController serves the post composer endpoints. Creation is a
// mock acknowledgement until the posting pipeline exists.
type PostsController struct{}

// NewPostsController creates a new posts controller
func NewPostsController() *PostsController {
	return &PostsController{}
}

// Health reports the posts subsystem status
func (c *PostsController) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

// Create acknowledges a post creation request
func (c *PostsController) Create(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Post created"})
}
