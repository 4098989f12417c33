// Package slug builds unique, URL-safe identifiers for invitations.
package slug

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"invitationadmin/internal/domain"
	"invitationadmin/internal/formdata"
	"invitationadmin/internal/lib/sl"
)

// DefaultMaxAttempts bounds the base, base-1, base-2, ... search.
const DefaultMaxAttempts = 100

const (
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 10
)

// ErrExhausted is returned by Unique when every candidate within the attempt bound is taken.
var ErrExhausted = errors.New("slug candidates exhausted")

var (
	invalidRun = regexp.MustCompile(`[^a-z0-9-]+`)
	hyphenRun  = regexp.MustCompile(`-{2,}`)
)

// Checker reports whether a slug is already persisted.
type Checker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Generator produces unique slugs against a Checker.
type Generator struct {
	checker     Checker
	logger      *slog.Logger
	maxAttempts int
}

// NewGenerator returns a Generator that checks candidates with checker.
func NewGenerator(checker Checker, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{checker: checker, logger: logger, maxAttempts: DefaultMaxAttempts}
}

// WithMaxAttempts returns a copy of g with a different attempt bound.
func (g *Generator) WithMaxAttempts(n int) *Generator {
	cp := *g
	if n > 0 {
		cp.maxAttempts = n
	}
	return &cp
}

// Generate returns a slug for an invitation of category with data. It never
// fails: when the uniqueness search errors or is exhausted it returns Fallback.
func (g *Generator) Generate(ctx context.Context, category domain.Category, data domain.FormData) string {
	base := Base(category, data)
	s, err := g.Unique(ctx, base)
	if err != nil {
		fb := Fallback(category)
		g.logger.WarnContext(ctx, "slug generation fell back", "base", base, "fallback", fb, sl.Err(err))
		return fb
	}
	return s
}

// Unique returns the first unused value among base, base-1, base-2, ...
func (g *Generator) Unique(ctx context.Context, base string) (string, error) {
	for i := 0; i < g.maxAttempts; i++ {
		candidate := base
		if i > 0 {
			candidate = base + "-" + strconv.Itoa(i)
		}
		exists, err := g.checker.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

// Base builds the normalized, pre-suffix slug for category and data.
// Missing names are replaced by a placeholder word.
func Base(category domain.Category, data domain.FormData) string {
	var raw string
	details, _ := formdata.Parse(category, data)
	switch v := details.(type) {
	case formdata.Wedding:
		raw = fmt.Sprintf("%s-%s-wedding", nameOr(v.BrideName, "bride"), nameOr(v.GroomName, "groom"))
	case formdata.Birthday:
		raw = nameOr(v.CelebrantName, "celebrant") + "-birthday"
		if v.Age != nil {
			raw += "-" + strconv.FormatFloat(*v.Age, 'f', -1, 64)
		}
	case formdata.Graduation:
		raw = nameOr(v.GraduateName, "graduate") + "-graduation"
	default:
		raw = string(category) + "-invitation"
	}
	if s := Normalize(raw); s != "" {
		return s
	}
	return "invitation"
}

// Normalize folds s to ASCII, lower-cases it, replaces every run outside
// [a-z0-9-] with a single hyphen, collapses hyphens and trims them from both ends.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = invalidRun.ReplaceAllString(s, "-")
	s = hyphenRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Fallback returns a practically unique slug that does not depend on the store.
func Fallback(category domain.Category) string {
	suffix, err := gonanoid.Generate(suffixAlphabet, suffixLength)
	if err != nil {
		suffix = strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	prefix := Normalize(string(category))
	if prefix == "" {
		return "invitation-" + suffix
	}
	return prefix + "-invitation-" + suffix
}

func nameOr(name *string, placeholder string) string {
	if name == nil || strings.TrimSpace(*name) == "" {
		return placeholder
	}
	return *name
}
