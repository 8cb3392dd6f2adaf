package compilation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"stark/internal/bktree"
	"stark/internal/project"
	"stark/internal/trace"
)

// Current schema version - increment when indexPayload changes
const indexSchemaVersion uint16 = 1

// IndexCache хранит индексы имён по дайджесту workspace на диске.
// Thread-safe for concurrent access.
type IndexCache struct {
	mu  sync.RWMutex
	dir string
}

// indexPayload is the msgpack envelope around a persisted tree.
type indexPayload struct {
	Schema uint16
	Digest project.Digest
	// Names are the declared spellings the tree was built from.
	Names []string
	// Tree is the bktree stream.
	Tree []byte
}

// OpenIndexCache opens a cache in dir, or in $XDG_CACHE_HOME/stark (with
// ~/.cache as the fallback base) when dir is empty.
func OpenIndexCache(dir string) (*IndexCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, "stark")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &IndexCache{dir: dir}, nil
}

// Dir is where entries are written.
func (c *IndexCache) Dir() string { return c.dir }

func (c *IndexCache) pathFor(key project.Digest) string {
	// подкаталог "index", чтобы DropAll не задевал чужие файлы
	return filepath.Join(c.dir, "index", key.String()+".mp")
}

// Put writes the tree built from names under key, replacing the previous
// entry atomically.
func (c *IndexCache) Put(key project.Digest, names []string, tree *bktree.Tree) error {
	if c == nil {
		return nil
	}
	var stream bytes.Buffer
	if _, err := tree.WriteTo(&stream); err != nil {
		return err
	}
	payload := &indexPayload{
		Schema: indexSchemaVersion,
		Digest: key,
		Names:  names,
		Tree:   stream.Bytes(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(f.Name())
		}
	}()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("index cache: encode: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads the entry for key. A missing entry is not an error. An entry
// whose envelope decodes but whose tree does not is dropped quietly: the
// failure goes to tracer and tree is nil.
func (c *IndexCache) Get(key project.Digest, tracer trace.Tracer) (names []string, tree *bktree.Tree, err error) {
	if c == nil {
		return nil, nil, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	var payload indexPayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, nil, fmt.Errorf("index cache: decode %s: %w", key, err)
	}
	if payload.Schema != indexSchemaVersion || payload.Digest != key {
		trace.Point(tracer, trace.ScopePass, "name_index.cache_stale", key.String())
		return nil, nil, nil
	}
	tree = bktree.ReadFrom(bytes.NewReader(payload.Tree), tracer)
	if tree == nil {
		return nil, nil, nil
	}
	return payload.Names, tree, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *IndexCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := filepath.Join(c.dir, "index")
	// тривиально: переименуем каталог и удалим
	old := dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
