package entity

import (
	"sort"
	"strings"
)

// Category is one display grouping of entities. Kind "list" preserves
// the raw order (people, read top to bottom); kind "badges" is a sorted
// de-duplicated set rendered as tags.
type Category struct {
	Name  string   `json:"name"`
	Kind  string   `json:"kind"`
	Items []string `json:"items"`
}

// Categorized is the display view over a transcript's raw entity map.
// The raw map is always preserved alongside so the canonical transcript
// round-trips unchanged.
type Categorized struct {
	Raw        map[string][]string `json:"raw"`
	Categories []Category          `json:"categories"`
}

// displayNames maps the provider entity labels seen in normalized
// transcripts onto display categories.
var displayNames = map[string]string{
	"person":        "People",
	"person_name":   "People",
	"name":          "People",
	"speaker":       "People",
	"location":      "Places",
	"place":         "Places",
	"organization":  "Organizations",
	"org":           "Organizations",
	"occupation":    "Occupations",
	"event":         "Events",
	"date":          "Dates",
	"time":          "Dates",
	"money":         "Amounts",
	"phone_number":  "Contact Details",
	"email_address": "Contact Details",
	"url":           "Contact Details",
}

// Categorize derives the display grouping from a raw entity map. Pure
// and deterministic: the same input always yields the same output.
func Categorize(raw map[string][]string) Categorized {
	out := Categorized{Raw: raw}
	if len(raw) == 0 {
		return out
	}

	grouped := map[string][]string{}
	for _, rawName := range sortedKeys(raw) {
		display := displayName(rawName)
		grouped[display] = append(grouped[display], raw[rawName]...)
	}

	for _, name := range sortedKeys(grouped) {
		items := grouped[name]
		kind := "badges"
		if name == "People" {
			kind = "list"
		}
		if kind == "badges" {
			items = sortedUnique(items)
		}
		out.Categories = append(out.Categories, Category{Name: name, Kind: kind, Items: items})
	}
	return out
}

func displayName(rawName string) string {
	key := strings.ToLower(strings.TrimSpace(rawName))
	if display, ok := displayNames[key]; ok {
		return display
	}
	// Unknown categories render under their own title-cased name.
	key = strings.ReplaceAll(key, "_", " ")
	if key == "" {
		return "Other"
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUnique(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	sort.Strings(out)
	return out
}
