// Package errpage resolves the body for an error response: a configured
// custom error page if one exists and is readable, else a built-in
// minimal HTML body. Spec.md §4.3 "Error-page resolver" / §7.
package errpage

import (
	"fmt"
	"os"

	"github.com/s00inx/webserv/config"
)

// Body returns the bytes to serve for status from sc's configured error
// pages, falling back to a built-in minimal HTML body when none is
// configured or the configured file cannot be read.
func Body(sc *config.ServerConfig, status int, message string) []byte {
	if sc != nil {
		if path, ok := sc.ErrorPages[status]; ok {
			if b, err := os.ReadFile(path); err == nil {
				return b
			}
		}
	}
	return Default(status, message)
}

// Default renders the built-in minimal HTML body for a status.
func Default(status int, message string) []byte {
	return []byte(fmt.Sprintf(
		"<html><head><title>%d %s</title></head><body><h1>%d %s</h1></body></html>",
		status, message, status, message))
}
