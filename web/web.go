// Package web embeds the upload page, its script and the API reference page
// into the binary.
//
// Go Pattern: //go:embed bakes files into the executable at build time,
// so the server ships as a single file with no template directory to deploy.
package web

import "embed"

// Files holds index.html, docs.html and static/scripts.js.
//
//go:embed index.html docs.html static/scripts.js
var Files embed.FS
