// Package config loads the bottle cell configuration.
//
// Values come from built-in defaults, then an optional YAML file named by
// --config or BOTTLECELL_CONFIG, then BOTTLECELL_* environment overrides. The
// result is validated before any component is built from it.
package config
