// Package config loads and validates application configuration.
//
// Values come from built-in defaults, an optional YAML file and TASKBOARD_*
// environment variables, layered with spf13/viper and checked with
// go-playground/validator struct tags.
package config
