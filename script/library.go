package script

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Info represents a saved script file (for listing)
type Info struct {
	Name     string // filename without .json
	Path     string
	Modified time.Time
}

// Library is a directory of saved scripts
type Library struct {
	Dir string
}

// LibraryDir returns the scripts directory path
func LibraryDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-pianola", "scripts"), nil
}

// DefaultLibrary opens the library under ~/.config/go-pianola
func DefaultLibrary() (*Library, error) {
	dir, err := LibraryDir()
	if err != nil {
		return nil, err
	}
	return &Library{Dir: dir}, nil
}

// Path returns where a script called name lives
func (l *Library) Path(name string) string {
	name = strings.TrimSuffix(sanitizeFilename(name), ".json")
	if name == "" {
		name = "untitled"
	}
	return filepath.Join(l.Dir, name+".json")
}

// List returns saved scripts, newest first
func (l *Library) List() ([]Info, error) {
	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, err
	}

	var infos []Info
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:     strings.TrimSuffix(entry.Name(), ".json"),
			Path:     filepath.Join(l.Dir, entry.Name()),
			Modified: fi.ModTime(),
		})
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Modified.Equal(infos[j].Modified) {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Modified.After(infos[j].Modified)
	})
	return infos, nil
}

// Save writes s under its own name and returns the path
func (l *Library) Save(s *Script) (string, error) {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	path := l.Path(s.Name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a saved script (or the most recent if name is empty)
func (l *Library) Load(name string) (*Script, error) {
	if name == "" {
		infos, err := l.List()
		if err != nil || len(infos) == 0 {
			return nil, fmt.Errorf("no scripts found in %s", l.Dir)
		}
		return Load(infos[0].Path)
	}
	return Load(l.Path(name))
}

// Delete removes a saved script
func (l *Library) Delete(name string) error {
	return os.Remove(l.Path(name))
}

// Rename moves a saved script to a new name
func (l *Library) Rename(oldName, newName string) error {
	return os.Rename(l.Path(oldName), l.Path(newName))
}

// Resolve turns a command-line argument into a script path: an existing
// file is used as is, otherwise the name is looked up in the library.
func Resolve(arg string) string {
	if arg == "" {
		return ""
	}
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	lib, err := DefaultLibrary()
	if err != nil {
		return arg
	}
	if path := lib.Path(arg); fileExists(path) {
		return path
	}
	return arg
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	).Replace(name)
	return name
}
