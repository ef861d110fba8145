package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
	"github.com/mohitkumar/commonevent/logger"
	"github.com/mohitkumar/commonevent/model"
	"github.com/mohitkumar/commonevent/persistence"
	"github.com/mohitkumar/commonevent/util"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const DEFAULT_WATCH_DEBOUNCE = 200 * time.Millisecond

var _ MetadataStorage = new(FileStorage)

// FileStorage keeps the common event database in a single YAML or JSON file.
// The format follows the file extension.
type FileStorage struct {
	path     string
	debounce time.Duration
	mu       sync.RWMutex
	events   map[int]model.CommonEventDefinition
}

func NewFileStorage(path string) (*FileStorage, error) {
	fs := &FileStorage{
		path:     path,
		debounce: DEFAULT_WATCH_DEBOUNCE,
		events:   make(map[int]model.CommonEventDefinition),
	}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

func (fs *FileStorage) isYaml() bool {
	ext := strings.ToLower(filepath.Ext(fs.path))
	return ext == ".yaml" || ext == ".yml"
}

// Reload reads the database file again. A missing file is an empty database.
func (fs *FileStorage) Reload() error {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.mu.Lock()
			fs.events = make(map[int]model.CommonEventDefinition)
			fs.mu.Unlock()
			return nil
		}
		return persistence.StorageLayerError{Message: err.Error()}
	}
	var db model.Database
	if fs.isYaml() {
		err = yaml.Unmarshal(data, &db)
	} else {
		err = json.Unmarshal(data, &db)
	}
	if err != nil {
		return fmt.Errorf("error parsing %s: %w", fs.path, err)
	}
	events := make(map[int]model.CommonEventDefinition, len(db.CommonEvents))
	for _, def := range db.CommonEvents {
		if _, ok := events[def.Id]; ok {
			return fmt.Errorf("common event id %d is duplicate in %s", def.Id, fs.path)
		}
		events[def.Id] = def
	}
	fs.mu.Lock()
	fs.events = events
	fs.mu.Unlock()
	logger.Info("loaded common event database", zap.String("path", fs.path), zap.Int("count", len(events)))
	return nil
}

func (fs *FileStorage) SaveCommonEvent(def model.CommonEventDefinition) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, existed := fs.events[def.Id]
	fs.events[def.Id] = def
	if err := fs.flush(); err != nil {
		if existed {
			fs.events[def.Id] = prev
		} else {
			delete(fs.events, def.Id)
		}
		return err
	}
	return nil
}

func (fs *FileStorage) DeleteCommonEvent(id int) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	prev, ok := fs.events[id]
	if !ok {
		return persistence.NotFoundError{Kind: "common event", Key: strconv.Itoa(id)}
	}
	delete(fs.events, id)
	if err := fs.flush(); err != nil {
		fs.events[id] = prev
		return err
	}
	return nil
}

func (fs *FileStorage) GetCommonEvent(id int) (*model.CommonEventDefinition, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	def, ok := fs.events[id]
	if !ok {
		return nil, persistence.NotFoundError{Kind: "common event", Key: strconv.Itoa(id)}
	}
	return &def, nil
}

func (fs *FileStorage) ListCommonEvents() ([]model.CommonEventDefinition, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.list(), nil
}

func (fs *FileStorage) list() []model.CommonEventDefinition {
	out := make([]model.CommonEventDefinition, 0, len(fs.events))
	for _, id := range util.SortedKeys(fs.events) {
		out = append(out, fs.events[id])
	}
	return out
}

// flush writes the database atomically. Callers hold the write lock.
func (fs *FileStorage) flush() error {
	db := model.Database{CommonEvents: fs.list()}
	var data []byte
	var err error
	if fs.isYaml() {
		data, err = yaml.Marshal(db)
	} else {
		data, err = json.MarshalIndent(db, "", "  ")
	}
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(fs.path, data, 0o644); err != nil {
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

// Watch reloads the database whenever the file changes on disk and then calls
// onChange. The directory is watched so that editors replacing the file by
// rename are noticed. Watching stops when ctx is done.
func (fs *FileStorage) Watch(ctx context.Context, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(fs.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", fs.path, err)
	}
	logger.Info("watching common event database", zap.String("path", fs.path))
	go fs.watchLoop(ctx, watcher, onChange)
	return nil
}

func (fs *FileStorage) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func()) {
	defer watcher.Close()
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()
	target := filepath.Clean(fs.path)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(fs.debounce, func() {
				if ctx.Err() != nil {
					return
				}
				if err := fs.Reload(); err != nil {
					logger.Error("error reloading common event database", zap.String("path", fs.path), zap.Error(err))
					return
				}
				onChange()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Error("common event database watcher error", zap.Error(err))
		}
	}
}
