package templates

import "embed"

// FS holds the page templates and the static PWA assets.
//
//go:embed *.html pages/*.html partials/*.html static/*
var FS embed.FS
