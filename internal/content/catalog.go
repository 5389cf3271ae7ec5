// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package content loads the conversation content configuration.
package content

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/jeranaias/siteassist/internal/model"
)

// =============================================================================
// CATALOG STRUCTURES
// =============================================================================

// Catalog is the complete content configuration of a site.
type Catalog struct {
	// DefaultLocale is used when a requested locale has no match.
	DefaultLocale string `toml:"default_locale" json:"default_locale" yaml:"default_locale"`

	// Locales holds one entry per supported locale.
	Locales []Content `toml:"locales" json:"locales" yaml:"locales"`

	// Pages are the host site's pages, addressed by root-relative path.
	Pages []Page `toml:"pages" json:"pages" yaml:"pages"`
}

// Content is the widget content for a single locale.
type Content struct {
	Locale      string             `toml:"locale" json:"locale" yaml:"locale"`
	Welcome     string             `toml:"welcome" json:"welcome" yaml:"welcome"`
	Suggestions []model.Suggestion `toml:"suggestions" json:"suggestions" yaml:"suggestions"`
	Copy        UICopy             `toml:"copy" json:"copy" yaml:"copy"`

	// Answers and Fallback are only used by the stub completion service.
	Answers  []Answer `toml:"answers" json:"answers,omitempty" yaml:"answers"`
	Fallback string   `toml:"fallback" json:"fallback,omitempty" yaml:"fallback"`
}

// UICopy holds the user-facing strings of the widget.
type UICopy struct {
	Title              string `toml:"title" json:"title" yaml:"title"`
	Placeholder        string `toml:"placeholder" json:"placeholder" yaml:"placeholder"`
	Tooltip            string `toml:"tooltip" json:"tooltip" yaml:"tooltip"`
	ErrorTitle         string `toml:"error_title" json:"error_title" yaml:"error_title"`
	ErrorDescription   string `toml:"error_description" json:"error_description" yaml:"error_description"`
	ClearedTitle       string `toml:"cleared_title" json:"cleared_title" yaml:"cleared_title"`
	ClearedDescription string `toml:"cleared_description" json:"cleared_description" yaml:"cleared_description"`
	ClearLabel         string `toml:"clear_label" json:"clear_label" yaml:"clear_label"`
	LoadingLabel       string `toml:"loading_label" json:"loading_label" yaml:"loading_label"`
}

// Answer is a canned reply selected when any keyword appears in a question.
type Answer struct {
	Keywords []string `toml:"keywords" json:"keywords" yaml:"keywords"`
	Reply    string   `toml:"reply" json:"reply" yaml:"reply"`
}

// Page is a single page of the host site. Body is markdown.
type Page struct {
	Path  string `toml:"path" json:"path" yaml:"path"`
	Title string `toml:"title" json:"title" yaml:"title"`
	Body  string `toml:"body" json:"body" yaml:"body"`
}

// DefaultCopy is applied to any UICopy field a catalog leaves empty.
var DefaultCopy = UICopy{
	Title:              "Assistant",
	Placeholder:        "Ask a question...",
	Tooltip:            "Chat with our assistant",
	ErrorTitle:         "Something went wrong",
	ErrorDescription:   "The assistant could not answer. Please try again.",
	ClearedTitle:       "Conversation cleared",
	ClearedDescription: "Start a new conversation any time.",
	ClearLabel:         "Clear",
	LoadingLabel:       "Thinking",
}

// Error variables for catalog problems.
var (
	// ErrNoLocales indicates the catalog defines no locales.
	ErrNoLocales = errors.New("catalog defines no locales")

	// ErrUnknownFormat indicates the file extension is not supported.
	ErrUnknownFormat = errors.New("unknown catalog format")
)

// =============================================================================
// LOOKUP
// =============================================================================

// Resolve returns the content best matching locale. The default locale is
// used when nothing matches or locale is empty. Missing copy fields are
// filled from DefaultCopy.
func (c *Catalog) Resolve(locale string) Content {
	if len(c.Locales) == 0 {
		return Content{Copy: DefaultCopy}
	}

	supported := c.orderedTags()
	idx := c.defaultIndex()

	if locale != "" {
		if want, err := language.Parse(locale); err == nil {
			matcher := language.NewMatcher(supported.tags)
			_, i, conf := matcher.Match(want)
			if conf != language.No {
				idx = supported.index[i]
			}
		}
	}

	return c.Locales[idx].withDefaults()
}

// Page returns the page at path. Any query or fragment is ignored.
func (c *Catalog) Page(path string) (Page, bool) {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, p := range c.Pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}

// Paths returns the page paths in catalog order.
func (c *Catalog) Paths() []string {
	paths := make([]string, len(c.Pages))
	for i, p := range c.Pages {
		paths[i] = p.Path
	}
	return paths
}

// LocaleNames returns the configured locale identifiers.
func (c *Catalog) LocaleNames() []string {
	names := make([]string, len(c.Locales))
	for i, l := range c.Locales {
		names[i] = l.Locale
	}
	return names
}

type tagSet struct {
	tags  []language.Tag
	index []int // tags[i] belongs to Locales[index[i]]
}

// orderedTags lists locale tags with the default locale first, since the
// matcher treats the first supported tag as its fallback.
func (c *Catalog) orderedTags() tagSet {
	def := c.defaultIndex()
	set := tagSet{}
	add := func(i int) {
		tag, err := language.Parse(c.Locales[i].Locale)
		if err != nil {
			return
		}
		set.tags = append(set.tags, tag)
		set.index = append(set.index, i)
	}
	add(def)
	for i := range c.Locales {
		if i != def {
			add(i)
		}
	}
	if len(set.tags) == 0 {
		set.tags = []language.Tag{language.Und}
		set.index = []int{def}
	}
	return set
}

func (c *Catalog) defaultIndex() int {
	for i, l := range c.Locales {
		if strings.EqualFold(l.Locale, c.DefaultLocale) {
			return i
		}
	}
	return 0
}

// withDefaults returns a copy with empty copy fields filled in.
func (c Content) withDefaults() Content {
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&c.Copy.Title, DefaultCopy.Title)
	fill(&c.Copy.Placeholder, DefaultCopy.Placeholder)
	fill(&c.Copy.Tooltip, DefaultCopy.Tooltip)
	fill(&c.Copy.ErrorTitle, DefaultCopy.ErrorTitle)
	fill(&c.Copy.ErrorDescription, DefaultCopy.ErrorDescription)
	fill(&c.Copy.ClearedTitle, DefaultCopy.ClearedTitle)
	fill(&c.Copy.ClearedDescription, DefaultCopy.ClearedDescription)
	fill(&c.Copy.ClearLabel, DefaultCopy.ClearLabel)
	fill(&c.Copy.LoadingLabel, DefaultCopy.LoadingLabel)
	return c
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes a single problem in a catalog.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the catalog and returns every problem found.
func (c *Catalog) Validate() error {
	if len(c.Locales) == 0 {
		return ErrNoLocales
	}

	var errs ValidateErrors
	seen := make(map[string]bool)

	for i, l := range c.Locales {
		field := fmt.Sprintf("locales[%d]", i)
		if _, err := language.Parse(l.Locale); err != nil {
			errs = append(errs, ValidationError{Field: field + ".locale", Message: fmt.Sprintf("invalid locale %q", l.Locale)})
		}
		key := strings.ToLower(l.Locale)
		if seen[key] {
			errs = append(errs, ValidationError{Field: field + ".locale", Message: fmt.Sprintf("duplicate locale %q", l.Locale)})
		}
		seen[key] = true

		if strings.TrimSpace(l.Welcome) == "" {
			errs = append(errs, ValidationError{Field: field + ".welcome", Message: "must not be empty"})
		}
		for j, s := range l.Suggestions {
			if strings.TrimSpace(s.Full) == "" {
				errs = append(errs, ValidationError{Field: fmt.Sprintf("%s.suggestions[%d].full", field, j), Message: "must not be empty"})
			}
		}
	}

	if c.DefaultLocale != "" && !seen[strings.ToLower(c.DefaultLocale)] {
		errs = append(errs, ValidationError{Field: "default_locale", Message: fmt.Sprintf("%q is not a configured locale", c.DefaultLocale)})
	}

	paths := make(map[string]bool)
	for i, p := range c.Pages {
		field := fmt.Sprintf("pages[%d].path", i)
		if !strings.HasPrefix(p.Path, "/") || strings.HasPrefix(p.Path, "//") {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("%q must be root-relative", p.Path)})
		}
		if paths[p.Path] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate path %q", p.Path)})
		}
		paths[p.Path] = true
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
