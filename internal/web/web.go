// Package web embeds the read-side single-page UI.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed static
var static embed.FS

// StaticFS returns the embedded UI assets rooted at the static directory
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// IndexHTML returns the UI entry page
func IndexHTML() ([]byte, error) {
	return static.ReadFile("static/index.html")
}
