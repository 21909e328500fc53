// Package security guards the document pipeline: request path sanitization,
// dangerous-pattern scanning of MDX bodies, component allowlisting, and the
// HTTP security headers and Content-Security-Policy served with rendered
// content.
package security
