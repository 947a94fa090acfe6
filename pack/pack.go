package pack

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/utils"
)

type FileLoader func(r io.Reader, cfg *config.Config, l *utils.Logger) (*Asset, error)

var gHandlers = map[string]FileLoader{
	".YAML": LoadAsset,
	".YML":  LoadAsset,
	// JSON is a subset of YAML
	".JSON": LoadAsset,
}

func SetHandler(ext string, ldr FileLoader) {
	gHandlers[strings.ToUpper(ext)] = ldr
}

func CallHandler(name string, r io.Reader, cfg *config.Config, l *utils.Logger) (*Asset, error) {
	ext := strings.ToUpper(filepath.Ext(name))
	h, found := gHandlers[ext]
	if !found {
		return nil, errors.Errorf("Cannot find handler for %q extension", ext)
	}
	a, err := h(r, cfg, l.With("file", filepath.Base(name)))
	if err != nil {
		return nil, errors.Wrapf(err, "Handler error for %q", name)
	}
	if a.Name == "" {
		a.Name = strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	}
	return a, nil
}

func Open(path string, cfg *config.Config, l *utils.Logger) (*Asset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open asset")
	}
	defer f.Close()
	return CallHandler(path, f, cfg, l)
}
