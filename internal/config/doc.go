// Package config assembles the process configuration once at startup.
//
// Sources, lowest precedence first: built-in defaults, an optional YAML
// file (version v1), dotenv files and the process environment. Dotenv
// files never override variables that are already set. Credentials are
// only ever read from the environment.
package config
