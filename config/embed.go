package config

import _ "embed"

//go:embed gomeca.toml
var DefaultConfig []byte
