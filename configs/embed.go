// Package configs provides embedded configuration templates for rlzap.
//
// Templates are embedded at build time, so `rlzap config init` works from
// any installation without the source tree.
//
// Configuration hierarchy (see internal/config Load):
//  1. Hardcoded defaults (config.NewConfig)
//  2. User config (~/.config/rlzap/config.yaml)
//  3. Project config (.rlzap.yaml) or --config
//  4. Environment variables (RLZAP_*)
package configs

import _ "embed"

// ConfigTemplate is the commented template written by `rlzap config init`,
// either as .rlzap.yaml in the working directory or, with --user, as the
// user config.
//
//go:embed rlzap.example.yaml
var ConfigTemplate string
