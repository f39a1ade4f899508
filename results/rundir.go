package results

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ErrRunDirBusy is returned when no free run directory was found within
// the allowed attempts.
var ErrRunDirBusy = errors.New("results: run directory not free")

// RunDir describes where a run writes its output:
//
//	<Base>/Results/<Session>/<Name>/<Algorithm>[/<LogDir>]
type RunDir struct {
	Base      string
	Session   string // "" or "random" picks a timestamp
	Name      string
	Algorithm string
	LogDir    string
	Attempts  int
}

// Create makes the run directory and returns its path. When the directory
// already exists a fresh uuid suffix is tried, up to Attempts times.
func (d RunDir) Create(now time.Time) (string, error) {
	session := d.Session
	if session == "" || session == "random" {
		session = now.Format("2006-01-02-15.04.05")
	}
	path := filepath.Join(d.Base, "Results", session, d.Name, d.Algorithm)
	if d.LogDir != "" {
		path = filepath.Join(path, d.LogDir)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("creating results parent: %w", err)
	}

	attempts := max(d.Attempts, 1)
	candidate := path
	for i := 0; i < attempts; i++ {
		err := os.Mkdir(candidate, 0755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("creating run directory: %w", err)
		}
		candidate = path + "-" + uuid.NewString()[:8]
	}
	return "", fmt.Errorf("%w: %s after %d attempts", ErrRunDirBusy, path, attempts)
}
