package catalog

import (
	"sort"
	"strings"
)

// platformKeywords maps textual mentions to catalog platform names.
// Multi-word keywords are matched as substrings of the lowercased text.
var platformKeywords = map[string]string{
	"slack":             "slack",
	"jira":              "jira",
	"linear":            "linear",
	"notion":            "notion",
	"hubspot":           "hubspot",
	"google sheets":     "google_sheets",
	"google docs":       "google_docs",
	"google drive":      "google_drive",
	"google calendar":   "google_calendar",
	"gmail":             "gmail",
	"github":            "github",
	"discord":           "discord",
	"reddit":            "reddit",
	"microsoft outlook": "microsoft_outlook",
	"microsoft teams":   "microsoft_teams",
}

// DetectPlatforms scans text for known platform keywords and returns the
// sorted set of mentioned platforms that exist in the catalog. This is the
// deterministic first phase of step classification; the capability confirms
// or rejects each detection afterwards.
func (c *Catalog) DetectPlatforms(text string) []string {
	lowered := strings.ToLower(text)

	seen := make(map[string]struct{})
	for keyword, platform := range platformKeywords {
		if !strings.Contains(lowered, keyword) {
			continue
		}
		if _, ok := c.platforms[platform]; !ok {
			continue
		}
		seen[platform] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}

	platforms := make([]string, 0, len(seen))
	for p := range seen {
		platforms = append(platforms, p)
	}
	sort.Strings(platforms)
	return platforms
}
