// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package navigation

import (
	"errors"
	"fmt"
	"testing"
)

func TestHistory_Navigate(t *testing.T) {
	h := NewHistory("")
	if got := h.Current(); got != "/" {
		t.Fatalf("Current() = %q, want /", got)
	}

	h.Navigate("/pricing")
	h.Navigate("/pricing")
	h.Navigate("features")

	if got := h.Current(); got != "/features" {
		t.Errorf("Current() = %q, want /features", got)
	}
	if got := h.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestHistory_NavigateDoesNotDispatch(t *testing.T) {
	h := NewHistory("/")
	var seen []string
	h.Subscribe(func(p string) { seen = append(seen, p) })

	h.Navigate("/about")
	if len(seen) != 0 {
		t.Errorf("subscribers notified on Navigate: %v", seen)
	}

	h.DispatchHashChange("/about")
	if len(seen) != 1 || seen[0] != "/about" {
		t.Errorf("seen = %v, want [/about]", seen)
	}
	if h.Dispatched() != 1 {
		t.Errorf("Dispatched() = %d, want 1", h.Dispatched())
	}
}

func TestHistory_Back(t *testing.T) {
	h := NewHistory("/")
	var seen []string
	h.Subscribe(func(p string) { seen = append(seen, p) })

	if h.Back() {
		t.Error("Back() on a single entry = true, want false")
	}

	h.Navigate("/pricing")
	if !h.Back() {
		t.Fatal("Back() = false, want true")
	}
	if h.Current() != "/" {
		t.Errorf("Current() = %q, want /", h.Current())
	}
	if len(seen) != 1 || seen[0] != "/" {
		t.Errorf("seen = %v, want [/]", seen)
	}
}

func TestHistory_SubscriberMayReenter(t *testing.T) {
	h := NewHistory("/")
	var current string
	h.Subscribe(func(string) { current = h.Current() })

	h.Navigate("/contact")
	h.DispatchHashChange("/contact")
	if current != "/contact" {
		t.Errorf("current = %q, want /contact", current)
	}
}

func TestHistory_Bounded(t *testing.T) {
	h := NewHistory("/")
	for i := 0; i < MaxHistory*2; i++ {
		h.Navigate(fmt.Sprintf("/p%d", i))
	}
	if h.Len() != MaxHistory {
		t.Errorf("Len() = %d, want %d", h.Len(), MaxHistory)
	}
}

func TestSystemOpener_RejectsBadLinks(t *testing.T) {
	o := SystemOpener{}
	if err := o.OpenIsolated("   "); !errors.Is(err, ErrEmptyLink) {
		t.Errorf("OpenIsolated(blank) = %v, want ErrEmptyLink", err)
	}
	if err := o.OpenIsolated("--help"); !errors.Is(err, ErrUnsafeLink) {
		t.Errorf("OpenIsolated(--help) = %v, want ErrUnsafeLink", err)
	}
}

func TestCheckLaunchable(t *testing.T) {
	tests := []struct {
		link string
		ok   bool
	}{
		{"https://example.com/docs", true},
		{"HTTP://example.com", true},
		{"mailto:hi@rentline.example", true},
		{"install.sh", false},
		{"./install.sh", false},
		{"/etc/passwd", false},
		{"file:///etc/passwd", false},
		{`C:\Windows\System32\calc.exe`, false},
		{"C:/Windows/System32/calc.exe", false},
		{`\\server\share\run.exe`, false},
		{"//example.com/x", false},
		{"https:///nohost", false},
		{"mailto:", false},
		{"javascript:alert(1)", false},
		{"ssh://example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.link, func(t *testing.T) {
			err := checkLaunchable(tt.link)
			if tt.ok && err != nil {
				t.Errorf("checkLaunchable(%q) = %v, want nil", tt.link, err)
			}
			if !tt.ok && !errors.Is(err, ErrUnsupportedScheme) {
				t.Errorf("checkLaunchable(%q) = %v, want ErrUnsupportedScheme", tt.link, err)
			}
		})
	}
}

func TestSystemOpener_RefusesLocalTargets(t *testing.T) {
	o := SystemOpener{}
	for _, link := range []string{"install.sh", "file:///etc/passwd", `C:\Windows\System32\calc.exe`} {
		if err := o.OpenIsolated(link); !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("OpenIsolated(%q) = %v, want ErrUnsupportedScheme", link, err)
		}
	}
}

func TestOpenerFunc(t *testing.T) {
	var got string
	o := OpenerFunc(func(raw string) error { got = raw; return nil })
	if err := o.OpenIsolated("https://example.com"); err != nil {
		t.Fatal(err)
	}
	if got != "https://example.com" {
		t.Errorf("got %q", got)
	}
}
