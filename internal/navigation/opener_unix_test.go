// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build unix

package navigation

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// fakeLauncher puts a recording xdg-open (or open) first on PATH and returns
// the file it appends each argument to.
func fakeLauncher(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	record := filepath.Join(dir, "launched.txt")

	name := "xdg-open"
	if runtime.GOOS == "darwin" {
		name = "open"
	}
	script := "#!/bin/sh\nprintf '%s\\n' \"$1\" >> '" + record + "'\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return record
}

func launched(record string) []string {
	data, err := os.ReadFile(record)
	if err != nil {
		return nil
	}
	return strings.Fields(string(data))
}

func TestSystemOpener_LaunchesOnlyWebLinks(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	record := fakeLauncher(t)
	o := SystemOpener{}

	for _, link := range []string{"install.sh", "file:///etc/passwd", `C:\Windows\System32\calc.exe`} {
		if err := o.OpenIsolated(link); err == nil {
			t.Errorf("OpenIsolated(%q) = nil, want error", link)
		}
	}

	const web = "https://help.rentline.example/screening"
	if err := o.OpenIsolated(web); err != nil {
		t.Fatalf("OpenIsolated(%q) = %v", web, err)
	}

	// The launcher is reaped in the background.
	deadline := time.Now().Add(5 * time.Second)
	for len(launched(record)) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	got := launched(record)
	if len(got) != 1 || got[0] != web {
		t.Errorf("launcher received %q, want only %q", got, web)
	}
}
