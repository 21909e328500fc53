package middleware

import (
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compress gzip encodes responses for clients that accept it.
func Compress(next http.Handler) http.Handler {
	return gzhttp.GzipHandler(next)
}
