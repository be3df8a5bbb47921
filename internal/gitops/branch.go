package gitops

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// branchPrefix namespaces all working branches this tool creates.
const branchPrefix = "docs/update"

// maxSlugSource caps how much of the context text feeds the slug.
const maxSlugSource = 60

// now is swapped in tests to pin the disambiguator.
var now = time.Now

// DeriveBranchName builds a working branch name. The slug comes from the
// user context when present, otherwise from up to three target doc file
// basenames, otherwise a generic word. A unix-seconds suffix disambiguates
// across runs.
func DeriveBranchName(contextHint string, docFiles []string) string {
	slug := ""
	if contextHint != "" {
		source := contextHint
		if len(source) > maxSlugSource {
			source = source[:maxSlugSource]
		}
		slug = Slugify(source)
	}

	if slug == "" && len(docFiles) > 0 {
		names := docFiles
		if len(names) > 3 {
			names = names[:3]
		}
		parts := make([]string, 0, len(names))
		for _, f := range names {
			base := filepath.Base(f)
			base = strings.TrimSuffix(base, filepath.Ext(base))
			if s := Slugify(base); s != "" {
				parts = append(parts, s)
			}
		}
		slug = strings.Join(parts, "-")
	}

	if slug == "" {
		slug = "docs"
	}

	return fmt.Sprintf("%s/%s-%d", branchPrefix, slug, now().Unix())
}

// Slugify lowercases text and collapses every run of non-alphanumeric
// characters to a single hyphen, trimming leading and trailing hyphens.
func Slugify(text string) string {
	var sb strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			sb.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(sb.String(), "-")
}
