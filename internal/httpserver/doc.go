// Package httpserver runs the service's single listener.
package httpserver
