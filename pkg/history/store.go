package history

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileStore rewrites a game log file after every hand
type FileStore struct {
	path string
}

// NewFileStore picks an unused file name in dir for a game started at now
// The name is YYYY-MM-DD-game.yaml, or YYYY-MM-DD-gN-game.yaml (N >= 2) if that's taken
func NewFileStore(dir string, now time.Time) *FileStore {
	date := now.Format("2006-01-02")
	path := filepath.Join(dir, date+"-game.yaml")
	for n := 2; fileExists(path); n++ {
		path = filepath.Join(dir, fmt.Sprintf("%s-g%d-game.yaml", date, n))
	}

	return &FileStore{path: path}
}

// OpenFileStore returns a store for an existing log file, e.g., when recovering a game
func OpenFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the path of the log file
func (f *FileStore) Path() string {
	return f.path
}

// Save rewrites the log file with the full game
// The file is replaced atomically, so a crash leaves either the old or the new log
func (f *FileStore) Save(g *Game) error {
	data, err := Encode(g)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".ohpshaw-*.tmp")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), f.path)
}

// Load reads and decodes the log file
func (f *FileStore) Load() (*Game, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}

	return Decode(data)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
