// Package discovery learns the service's public URL from the headers a
// reverse proxy adds to every inbound request.
package discovery
