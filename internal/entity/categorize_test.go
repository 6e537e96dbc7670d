package entity

import (
	"reflect"
	"testing"
)

func TestCategorizePeopleKeepOrder(t *testing.T) {
	raw := map[string][]string{
		"person": {"Zoe", "Ada", "Zoe"},
	}

	got := Categorize(raw)
	if len(got.Categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(got.Categories))
	}
	c := got.Categories[0]
	if c.Name != "People" || c.Kind != "list" {
		t.Errorf("category = %+v", c)
	}
	// Lists preserve the raw order, duplicates included
	if !reflect.DeepEqual(c.Items, []string{"Zoe", "Ada", "Zoe"}) {
		t.Errorf("items = %v", c.Items)
	}
}

func TestCategorizeBadgesSortedUnique(t *testing.T) {
	raw := map[string][]string{
		"location": {"Paris", "Berlin", "Paris", "Amsterdam"},
	}

	got := Categorize(raw)
	c := got.Categories[0]
	if c.Name != "Places" || c.Kind != "badges" {
		t.Errorf("category = %+v", c)
	}
	if !reflect.DeepEqual(c.Items, []string{"Amsterdam", "Berlin", "Paris"}) {
		t.Errorf("items = %v", c.Items)
	}
}

func TestCategorizeRawPreserved(t *testing.T) {
	raw := map[string][]string{
		"person":   {"Ada"},
		"location": {"London"},
	}

	got := Categorize(raw)
	if !reflect.DeepEqual(got.Raw, raw) {
		t.Errorf("raw map not preserved: %v", got.Raw)
	}
}

func TestCategorizeMergesLabelsUnderDisplayName(t *testing.T) {
	raw := map[string][]string{
		"name":        {"Ada"},
		"person":      {"Grace"},
		"person_name": {"Edsger"},
	}

	got := Categorize(raw)
	if len(got.Categories) != 1 {
		t.Fatalf("got %d categories, want 1", len(got.Categories))
	}
	// Raw keys merge in sorted key order
	want := []string{"Ada", "Grace", "Edsger"}
	if !reflect.DeepEqual(got.Categories[0].Items, want) {
		t.Errorf("items = %v, want %v", got.Categories[0].Items, want)
	}
}

func TestCategorizeUnknownLabelTitleCased(t *testing.T) {
	got := Categorize(map[string][]string{"credit_card": {"visa"}})
	if got.Categories[0].Name != "Credit card" {
		t.Errorf("name = %q", got.Categories[0].Name)
	}
	if got.Categories[0].Kind != "badges" {
		t.Errorf("kind = %q", got.Categories[0].Kind)
	}
}

func TestCategorizeDeterministic(t *testing.T) {
	raw := map[string][]string{
		"person":       {"Ada", "Grace"},
		"location":     {"Paris", "Berlin"},
		"organization": {"ACME"},
		"date":         {"Monday"},
	}

	first := Categorize(raw)
	for i := 0; i < 50; i++ {
		if got := Categorize(raw); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
}

func TestCategorizeEmpty(t *testing.T) {
	got := Categorize(nil)
	if len(got.Categories) != 0 {
		t.Errorf("categories = %v, want none", got.Categories)
	}
}
