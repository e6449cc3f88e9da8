package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/simtools/handmon/internal/domain/handedness"
)

// timestampLayout is the local-time format on the file's second line.
const timestampLayout = "2006-01-02 15:04:05"

// updatedPrefix introduces the timestamp line.
const updatedPrefix = "Updated: "

// Repository defines persistence operations for the confirmed handedness.
type Repository interface {
	Load(ctx context.Context) (*handedness.State, error)
	Save(ctx context.Context, state *handedness.State) error
}

// FileRepository persists the confirmed handedness to a two-line text file.
// Writes go through a temp file and rename so consumers never observe a
// partially written file.
type FileRepository struct {
	// path is the filesystem location of the state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// errMalformed is returned when the file content does not match the format.
var errMalformed = errors.New("malformed state file")

// NewFileRepository creates a repository that reads/writes the state file
// at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*handedness.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	lines := strings.Split(strings.TrimRight(string(contents), "\n"), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[1], updatedPrefix) {
		return nil, errMalformed
	}

	value := handedness.Parse(lines[0])
	if !value.Known() {
		return nil, fmt.Errorf("%w: unknown value %q", errMalformed, lines[0])
	}

	timestamp, err := time.ParseInLocation(timestampLayout, strings.TrimPrefix(lines[1], updatedPrefix), time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformed, err)
	}

	return &handedness.State{
		Timestamp: timestamp,
		Value:     value,
	}, nil
}

// Save overwrites the state file with the provided state. The previous
// content is replaced atomically.
func (r *FileRepository) Save(_ context.Context, state *handedness.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content := fmt.Sprintf("%s\n%s%s\n",
		state.Value.Code(),
		updatedPrefix,
		state.Timestamp.Local().Format(timestampLayout),
	)

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}

	if _, err = tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("write state file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("close state file: %w", err)
	}

	if err = os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())

		return fmt.Errorf("replace state file: %w", err)
	}

	return nil
}
