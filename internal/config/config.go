// Package config implements the section/option configuration store the
// core consumes, backed by the sectioned INI syntax the original
// landiallerd.conf files use.
package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// DefaultPaths is searched in order; the first file found wins.
var DefaultPaths = []string{
	"/usr/local/etc/landiallerd.conf",
	"/etc/landiallerd.conf",
	"./landiallerd.conf",
}

// DefaultPort is used when the general/port option is absent.
const DefaultPort = 6543

// Config offers section/option lookups over a parsed INI file.
type Config struct {
	file *ini.File
	path string
}

// Get returns the value of option within section, and whether it was
// present. A missing section is treated the same as a missing option.
func (c *Config) Get(section, option string) (string, bool) {
	sec, err := c.file.GetSection(section)
	if err != nil {
		return "", false
	}
	if !sec.HasKey(option) {
		return "", false
	}
	return sec.Key(option).String(), true
}

// Path returns the file path this Config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Load parses the INI file at path.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &Config{file: f, path: path}, nil
}

// Find searches paths in order and loads the first one that exists. If
// paths is empty, DefaultPaths is used. It returns an error naming every
// path tried if none exist.
func Find(paths []string) (*Config, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return nil, fmt.Errorf("no config file found in %v", paths)
}
