// Package middlewarex holds the chi middleware shared by the HTTP facade.
package middlewarex

import "wfm_flipper/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals
