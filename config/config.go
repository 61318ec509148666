package config

import (
	"os"
	"path"

	"gopkg.in/yaml.v2"
)

// SlugMode selects what happens when a new board's slug collides with a
// sibling's.
type SlugMode string

const (
	// SlugModeStrict rejects the collision with a duplicate-path error.
	// Default for new deployments.
	SlugModeStrict SlugMode = "strict"
	// SlugModeDedupe silently appends a numeric suffix until unique.
	// Legacy behavior.
	SlugModeDedupe SlugMode = "dedupe"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	SlugMode           SlugMode `yaml:"slug_mode"`
	FlagsPerPage       int      `yaml:"flags_per_page"`
	ModerationsPerPage int      `yaml:"moderations_per_page"`
	// MaxTreeDepth bounds ancestor walks; a chain longer than this is
	// treated as a corrupted tree.
	MaxTreeDepth int `yaml:"max_tree_depth"`
}

type Private struct {
	Pg Pg `yaml:"pg"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

func (c *Config) Pg() Pg {
	return c.private.Pg
}

// Normalize fills unset fields with the documented defaults.
func (p *Public) Normalize() {
	if p.SlugMode == "" {
		p.SlugMode = SlugModeStrict
	}
	if p.FlagsPerPage <= 0 {
		p.FlagsPerPage = 15
	}
	if p.ModerationsPerPage <= 0 {
		p.ModerationsPerPage = 15
	}
	if p.MaxTreeDepth <= 0 {
		p.MaxTreeDepth = 64
	}
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file")
	}
	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)
	public.Normalize()

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}
