package dircat

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFileName is looked up in the scan root when --config is not given.
const ConfigFileName = ".dircat.toml"

// Config is the optional TOML configuration file.
//
//	include = ["*.go", "*.md"]
//	exclude = ["testdata"]
//	gitignore = true
//	stats = false
type Config struct {
	Include   []string `toml:"include"`
	Exclude   []string `toml:"exclude"`
	GitIgnore bool     `toml:"gitignore"`
	Stats     bool     `toml:"stats"`

	// Path is the file the config was read from, empty if none was found.
	Path string `toml:"-"`
}

// LoadConfig reads the config at path. A missing file is an error only
// when required is set; otherwise an empty Config is returned.
func LoadConfig(path string, required bool) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Path = path
	return &cfg, nil
}

// ProvideConfig loads --config if set, otherwise the config file in the scan
// root if there is one.
func ProvideConfig(args *Args, root ScanRoot) (*Config, error) {
	if args.Config != "" {
		return LoadConfig(expandHome(args.Config), true)
	}
	return LoadConfig(filepath.Join(string(root), ConfigFileName), false)
}
