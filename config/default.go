package config

import _ "embed"

// Default is the built-in configuration merged under conf.yaml.
//
//go:embed conf.default.yaml
var Default []byte
