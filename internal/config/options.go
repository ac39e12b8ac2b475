package config

import "os"

// Option is a functional option for Load.
type Option func(*options)

type options struct {
	file         string
	envFiles     []string
	loadEnvFiles bool
	lookup       func(string) (string, bool)
}

// WithFile reads the YAML file at path. An empty path is ignored.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

// WithEnvFiles replaces [DefaultEnvFiles].
func WithEnvFiles(paths ...string) Option {
	return func(o *options) {
		o.envFiles = paths
	}
}

// WithoutEnvFiles skips dotenv loading entirely.
func WithoutEnvFiles() Option {
	return func(o *options) {
		o.loadEnvFiles = false
	}
}

// WithLookup replaces os.LookupEnv, mostly for tests.
func WithLookup(lookup func(string) (string, bool)) Option {
	return func(o *options) {
		o.lookup = lookup
	}
}

func applyOptions(opts ...Option) *options {
	o := &options{
		envFiles:     DefaultEnvFiles,
		loadEnvFiles: true,
		lookup:       os.LookupEnv,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
