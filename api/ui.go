package api

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

// ServeUI serves the prebuilt storefront from dir. Unknown paths fall back to
// index.html for client-side routing.
func ServeUI(app *fiber.App, dir string) {
	app.Use(filesystem.New(filesystem.Config{
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		Root:         http.Dir(dir),
		Index:        "index.html",
		NotFoundFile: "index.html",
	}))
}
