// Package yamlcfg provides the YAML implementation of the config.Loader
// interface. Every YAML document of a file describes one graph.
package yamlcfg
