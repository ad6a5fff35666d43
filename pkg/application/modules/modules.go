// Package modules runs long-lived process components inside an errgroup.
package modules

import "wfm_flipper/pkg/contextx"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals
