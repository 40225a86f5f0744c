package main

import (
	"embed"
	"io/fs"

	"github.com/cherseta/chersey/internal/server"
)

// Pages and assets served by the front end routes.
//
//go:embed all:ui
var uiDist embed.FS

func init() {
	sub, err := fs.Sub(uiDist, "ui")
	if err != nil {
		return
	}
	server.SetUI(sub)
}
