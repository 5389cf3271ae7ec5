// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package content

import "os"

// reloadForTest writes data to path and runs one reload synchronously.
func (w *Watcher) reloadForTest(data []byte, path string) {
	_ = os.WriteFile(path, data, 0600)
	w.reload()
	_ = w.watcher.Close()
}
