package main

import (
	"io/fs"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/pack"
	"github.com/mogaika/anim_inspector/utils"
)

func checkPaths(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".json":
			if !d.IsDir() {
				paths = append(paths, path)
			}
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}

// parseCheck decodes every sequence of every asset under root and reports
// failures without stopping. Returns the number of failed sequences.
func parseCheck(root string, cfg *config.Config, l *utils.Logger) int {
	paths, err := checkPaths(root)
	if err != nil {
		log.Fatal(err)
	}

	failed := 0
	for _, path := range paths {
		a, err := pack.Open(path, cfg, l)
		if err != nil {
			log.Printf("E %s: %v", path, err)
			failed++
			continue
		}
		errs := a.DecodeAnimations(l)
		for _, err := range errs {
			log.Printf("E %s: %v", path, err)
		}
		failed += len(errs)
		log.Printf("%s: %d of %d sequences decoded", path, len(a.Sequences)-len(errs), len(a.Sequences))
	}
	return failed
}
