package cli

import (
	"flag"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/codalotl/treediff/internal/delta"
)

// config holds the tunable defaults for a treediff run. Values come from
// defaultConfig, then an optional TOML file, then explicit command-line flags,
// each layer overriding the one before it.
type config struct {
	ContextLines   int      `toml:"context_lines"`
	InterhunkLines int      `toml:"interhunk_lines"`
	OldPrefix      string   `toml:"old_prefix"`
	NewPrefix      string   `toml:"new_prefix"`
	MaxSize        int64    `toml:"max_size"`
	Ignore         []string `toml:"ignore"`
}

func defaultConfig() config {
	return config{
		ContextLines: 3,
		MaxSize:      delta.DefaultMaxSize,
	}
}

// loadFile overlays values from a TOML file onto c. Unknown keys are an
// error so typos in a config file don't silently do nothing.
func (c *config) loadFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	if undec := meta.Undecoded(); len(undec) > 0 {
		return fmt.Errorf("config %s: unknown key %q", path, undec[0].String())
	}
	return nil
}

// applyFlags overlays explicitly-set command-line flags onto c. Only flags
// the user actually passed win over the config file; defaults don't.
func (c *config) applyFlags(fs *flag.FlagSet, contextLines, interhunk int, maxSize int64) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "U":
			c.ContextLines = contextLines
		case "interhunk":
			c.InterhunkLines = interhunk
		case "max-size":
			c.MaxSize = maxSize
		}
	})
	if c.MaxSize == 0 {
		c.MaxSize = delta.DefaultMaxSize
	}
}
