// Package stores resolves CheapShark store identifiers to display names.
package stores

import (
	"maps"
	"slices"
	"strconv"
)

// DefaultPlaceholder is shown for store identifiers missing from the directory.
const DefaultPlaceholder = "Store"

// SteamID is the CheapShark identifier of the Steam store.
const SteamID = "1"

var defaultNames = map[string]string{
	"1":  "Steam",
	"2":  "GamersGate",
	"3":  "GreenManGaming",
	"7":  "GOG",
	"11": "Humble Store",
	"15": "Fanatical",
	"21": "Epic Games",
	"23": "GameStop",
	"24": "Direct2Drive",
	"25": "Epic Games",
	"32": "Origin",
}

// Store is one directory entry.
type Store struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Directory is an immutable store id → name table.
type Directory struct {
	names       map[string]string
	placeholder string
}

// New copies names into a Directory. An empty placeholder falls back to DefaultPlaceholder.
func New(names map[string]string, placeholder string) *Directory {
	if placeholder == "" {
		placeholder = DefaultPlaceholder
	}
	return &Directory{names: maps.Clone(names), placeholder: placeholder}
}

// Default returns the built-in CheapShark store table.
func Default(placeholder string) *Directory {
	return New(defaultNames, placeholder)
}

// Lookup returns the display name for id, or the placeholder when unknown.
func (d *Directory) Lookup(id string) string {
	if name, ok := d.names[id]; ok {
		return name
	}
	return d.placeholder
}

// Placeholder is the label used for unknown identifiers.
func (d *Directory) Placeholder() string {
	return d.placeholder
}

// Stores lists the known stores ordered by numeric identifier.
func (d *Directory) Stores() []Store {
	ids := slices.SortedFunc(maps.Keys(d.names), compareIDs)
	out := make([]Store, 0, len(ids))
	for _, id := range ids {
		out = append(out, Store{ID: id, Name: d.names[id]})
	}
	return out
}

func compareIDs(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		return ai - bi
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
