// Package web содержит встроенные в бинарник HTML-страницы и статику.
package web

import (
	"embed"
	"io/fs"
)

//go:embed views/*.html static/*
var files embed.FS

// Views — страницы (home.html, login.html, register.html, dashboard.html).
func Views() fs.FS {
	sub, err := fs.Sub(files, "views")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static — css/js, раздаётся под /static/.
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
