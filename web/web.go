// Package web embeds the dashboard's static assets.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var assets embed.FS

// Static serves the dashboard assets rooted at the static directory.
func Static() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

// Index returns the dashboard page.
func Index() ([]byte, error) {
	return assets.ReadFile("static/index.html")
}
