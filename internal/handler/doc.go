// Package handler implements the HTTP surface: the status page, the JSON
// health and debug endpoints, the bot status report endpoint and the
// metrics endpoints. NewRouter wires them into a gin engine behind request
// logging and the public URL learner.
package handler
