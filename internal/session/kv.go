package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KV is a small durable key-value store backed by a single JSON file. It
// holds the session entries ("token", "usuario") and the device token.
type KV struct {
	mu   sync.Mutex
	path string
}

// NewKV creates a KV store at path, creating the parent directory if needed.
func NewKV(path string) (*KV, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &KV{path: path}, nil
}

// Get returns the value for key and whether it was present.
func (kv *KV) Get(key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	entries, err := kv.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

// Set stores value under key.
func (kv *KV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	entries, err := kv.read()
	if err != nil {
		return err
	}
	entries[key] = value
	return kv.write(entries)
}

// Delete removes key. Deleting an absent key is not an error.
func (kv *KV) Delete(key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	entries, err := kv.read()
	if err != nil {
		return err
	}
	delete(entries, key)
	return kv.write(entries)
}

func (kv *KV) read() (map[string]string, error) {
	data, err := os.ReadFile(kv.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	entries := map[string]string{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			// A corrupt state file is treated as empty rather than wedging
			// the client.
			return map[string]string{}, nil
		}
	}
	return entries, nil
}

func (kv *KV) write(entries map[string]string) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := kv.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return os.Rename(tmp, kv.path)
}
