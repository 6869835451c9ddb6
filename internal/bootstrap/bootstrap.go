// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/kraklabs/graphmap/internal/errors"
)

// ProjectRoot resolves root to an absolute path and verifies it exists and
// is a directory. Relative roots are resolved against the working directory.
func ProjectRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.NewConfigInvalid(
			"cannot resolve projectRoot",
			err.Error(),
			"pass an existing, readable directory as --project-root",
			err,
		)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.NewConfigInvalid(
			"projectRoot does not exist",
			abs,
			"pass an existing, readable directory as --project-root",
			err,
		)
	}
	if !info.IsDir() {
		return "", errors.NewConfigInvalid(
			"projectRoot is not a directory",
			abs,
			"pass a directory, not a file, as --project-root",
			nil,
		)
	}

	return abs, nil
}

// HelperCache resolves and memoizes the absolute path of helper
// executables invoked via the §6.3 single-shot stdin/stdout protocol.
// Lookups are process-wide per the Design Notes §9 "global state" rule,
// but the cache itself is never a package-level singleton: callers own
// one instance and pass it down explicitly.
type HelperCache struct {
	mu    sync.Mutex
	paths map[string]string
}

// NewHelperCache returns an empty, ready-to-use cache.
func NewHelperCache() *HelperCache {
	return &HelperCache{paths: make(map[string]string)}
}

// Resolve returns the absolute path of the named helper executable,
// looking it up on PATH via exec.LookPath the first time and serving the
// cached value on subsequent calls. Returns a HelperUnavailable UserError
// if the helper cannot be found.
func (c *HelperCache) Resolve(name string, logger *slog.Logger) (string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if path, ok := c.paths[name]; ok {
		return path, nil
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.NewHelperUnavailable(
			fmt.Sprintf("helper %q not found on PATH", name),
			err.Error(),
			fmt.Sprintf("install %s or disable the typed extraction path that requires it", name),
			err,
		)
	}

	logger.Debug("bootstrap.helper.resolved", "name", name, "path", path)
	c.paths[name] = path
	return path, nil
}

// Forget drops a cached resolution, forcing the next Resolve call to
// re-run exec.LookPath. Used after a HelperTimeout or HelperUnavailable
// failure so a stale/broken path isn't served again within the same run.
func (c *HelperCache) Forget(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.paths, name)
}
