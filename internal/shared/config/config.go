package config

import (
	"os"
	"path/filepath"
)

const defaultConfigRelPath = "configs/conf.yml"

var Conf Config

// Load resolves and loads the config file.
// An explicit cfgName (relative or absolute) wins; otherwise the loader
// walks upward from the working directory looking for configs/conf.yml,
// so binaries work from any subdirectory of the repo.
func Load(cfgName string) {
	curDir, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	if cfgName != "" {
		if filepath.IsAbs(cfgName) {
			load(cfgName)
			return
		}
		load(filepath.Join(curDir, cfgName))
		return
	}

	load(findConfigUpward(curDir))
}

func findConfigUpward(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, defaultConfigRelPath)
		if fileExist(candidate) {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("config file not exist, searched configs/conf.yml from: " + startDir)
		}
		dir = parent
	}
}
