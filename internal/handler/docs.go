package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DocsHandler struct{}

func NewDocsHandler() *DocsHandler {
	return &DocsHandler{}
}

type routeDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

type routeGroupDoc struct {
	Group  string     `json:"group"`
	Routes []routeDoc `json:"routes"`
}

// Index serves the machine-readable endpoint catalog. Public, no key
// required.
func (h *DocsHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"version": "1.0.0",
		"endpoints": []routeGroupDoc{
			{
				Group: "Authentication",
				Routes: []routeDoc{
					{Method: "POST", Path: "/api/auth/register", Description: "Register a new developer account"},
					{Method: "POST", Path: "/api/auth/login", Description: "Log in and retrieve an API key"},
					{Method: "GET", Path: "/api/auth/my-keys", Description: "List the caller's API keys"},
					{Method: "POST", Path: "/api/auth/regenerate-key", Description: "Replace the presented API key"},
					{Method: "GET", Path: "/api/auth/users", Description: "List accounts (admin only)"},
				},
			},
			{
				Group: "Books",
				Routes: []routeDoc{
					{Method: "GET", Path: "/api/books", Description: "List and search the book catalog"},
					{Method: "POST", Path: "/api/books", Description: "Add a book (admin only)"},
					{Method: "PUT", Path: "/api/books/:id", Description: "Update a book (admin only)"},
					{Method: "DELETE", Path: "/api/books/:id", Description: "Delete a book (admin only)"},
				},
			},
			{
				Group: "Categories",
				Routes: []routeDoc{
					{Method: "GET", Path: "/api/categories", Description: "List categories with book counts"},
					{Method: "POST", Path: "/api/categories", Description: "Create a category (admin only)"},
					{Method: "PUT", Path: "/api/categories/:id", Description: "Rename a category (admin only)"},
					{Method: "DELETE", Path: "/api/categories/:id", Description: "Delete an unused category (admin only)"},
				},
			},
		},
	})
}
