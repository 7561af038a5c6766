// Package config manages configuration for the HTML post-processor.
//
// Configuration comes from two sources: CLI flags populate the flat Config
// struct, and an optional YAML file (.endnotes) supplies selector rule sets
// with per-directory overrides. Validation happens once after CLI parsing
// so that failures surface before any page is touched.
//
// The processing database lives under the XDG data directory by default,
// following the XDG Base Directory Specification.
package config
