package config

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the inspector. It is loaded once
// and passed explicitly to whatever needs it.
type Config struct {
	Game        string `yaml:"game"`
	Encoding    string `yaml:"encoding"`
	LogLevel    string `yaml:"log_level"`
	Addr        string `yaml:"addr"`
	SkinWorkers int    `yaml:"skin_workers"`
	WebPath     string `yaml:"web_path"`

	game    Game
	charmap *charmap.Charmap
}

func Default() *Config {
	c := &Config{
		Game:        GAME_UE3.String(),
		Encoding:    DefaultEncoding,
		LogLevel:    "info",
		Addr:        ":8000",
		SkinWorkers: 1,
	}
	if err := c.resolve(logrus.StandardLogger()); err != nil {
		panic(err)
	}
	return c
}

func Load(r io.Reader, log logrus.FieldLogger) (*Config, error) {
	c := Default()
	if err := yaml.NewDecoder(r).Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "Failed to decode config")
	}
	if err := c.resolve(log); err != nil {
		return nil, err
	}
	return c, nil
}

func LoadFile(path string, log logrus.FieldLogger) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open config %q", path)
	}
	defer f.Close()
	return Load(f, log)
}

func (c *Config) resolve(log logrus.FieldLogger) error {
	g, ok := ParseGame(c.Game)
	if !ok {
		log.Warnf("Unknown game identifier %q, using %q quirks", c.Game, g)
	}
	c.game = g

	if c.Encoding == "" {
		c.Encoding = DefaultEncoding
	}
	cm, err := FindEncoding(c.Encoding)
	if err != nil {
		return err
	}
	c.charmap = cm

	if c.SkinWorkers < 1 {
		c.SkinWorkers = 1
	}
	return nil
}

func (c *Config) GameId() Game {
	return c.game
}

func (c *Config) Charmap() *charmap.Charmap {
	return c.charmap
}

func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
