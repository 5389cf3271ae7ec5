// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build unix

package navigation

import (
	"os/exec"
	"runtime"
	"syscall"
)

// launch starts the platform opener in a new session and reaps it in the
// background.
func launch(link string) error {
	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return err
	}

	cmd := exec.Command(path, link)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}
