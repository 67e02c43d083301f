//go:build !js

package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"k8s.io/klog/v2"
)

// DefaultStateFile is the path, relative to the XDG state home, used by
// LoadOrCreate when identities are persisted.
const DefaultStateFile = "sidestacker/client_id"

// LoadOrCreate returns the identity stored at relPath under the XDG state
// home, creating and storing a new one if none exists or the stored one is
// invalid.
func LoadOrCreate(relPath string) (string, error) {
	path, err := xdg.StateFile(relPath)
	if err != nil {
		return "", fmt.Errorf("resolve identity path: %w", err)
	}
	return loadOrCreateAt(path)
}

func loadOrCreateAt(path string) (string, error) {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if Valid(id) {
			klog.V(1).Infof("identity: loaded %s from %s", id, path)
			return id, nil
		}
		klog.Warningf("identity: ignoring invalid identity stored in %s", path)
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("read identity: %w", err)
	}

	id := New()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create identity dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write identity: %w", err)
	}
	klog.Infof("identity: created %s in %s", id, path)
	return id, nil
}
