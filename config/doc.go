// Package config loads settings from defaults, an optional config.yaml and
// the environment. PORT and the hosting platforms' public URL variables are
// bound under their fixed names.
package config
