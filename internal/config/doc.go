// Package config defines monitor settings for the handmon binary and
// provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the output file path, polling and debounce
// parameters, the recognizer invocation, and serial channel tuning.
package config
