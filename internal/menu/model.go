// Package menu builds the side navigation of the panel from the menu tree
// served by the ZuPOS web panel and keeps each session's expansion state in
// sync with the page being viewed.
package menu

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"zupos_panel/internal/routes"
)

// MenuTypePanel marks entries meant for this panel; others are dropped.
const MenuTypePanel = 2

var ErrMalformedPayload = errors.New("malformed menu payload")

// MainItem is the top-level item of a menu group.
type MainItem struct {
	SequenceID int    `json:"menuSeqId"`
	MenuID     int    `json:"menuId"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Controller string `json:"controller"`
	Action     string `json:"action"`
	ImagePath  string `json:"imagePath"`
	MenuTypeID int    `json:"typeId"`
}

// SubItem is a navigable leaf inside a menu group.
type SubItem struct {
	SequenceID int    `json:"menuSeqId"`
	MenuID     int    `json:"menuId"`
	Name       string `json:"name"`
	URL        string `json:"url"`
	Controller string `json:"controller"`
	Action     string `json:"action"`
}

// Path is the panel path the sub-item navigates to.
func (s SubItem) Path() string {
	return routes.Resolve(s.Controller, s.Action)
}

// Entry is one top-level navigation group. Entries are never mutated after
// they are decoded, so they can be shared between snapshots.
type Entry struct {
	Main MainItem  `json:"mainModel"`
	Subs []SubItem `json:"subMenu"`
}

// FilterPanel keeps the entries whose main item is of MenuTypePanel,
// preserving order.
func FilterPanel(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Main.MenuTypeID == MenuTypePanel {
			out = append(out, e)
		}
	}
	return out
}

// DecodePayload decodes a getMenuList body. A falsy or absent body is an
// empty list; anything that is not an array of entries is malformed.
//
// Only panel entries are decoded strictly. An entry of another menu type
// that does not decode is skipped, since FilterPanel drops it anyway.
func DecodePayload(body []byte) ([]Entry, error) {
	if len(body) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid json", ErrMalformedPayload)
	}

	root := gjson.ParseBytes(body)
	if isFalsy(root) {
		return nil, nil
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrMalformedPayload, root.Type)
	}

	items := root.Array()
	entries := make([]Entry, 0, len(items))
	for i, item := range items {
		if !item.Get("mainModel").IsObject() {
			return nil, fmt.Errorf("%w: entry %d has no mainModel", ErrMalformedPayload, i)
		}
		e, err := decodeEntry(item)
		if err != nil {
			if !isPanelEntry(item) {
				continue
			}
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformedPayload, i, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func isPanelEntry(item gjson.Result) bool {
	typ := item.Get("mainModel.typeId")
	return typ.Type == gjson.Number && typ.Int() == MenuTypePanel
}

func decodeEntry(item gjson.Result) (Entry, error) {
	sub := item.Get("subMenu")
	if sub.Exists() && sub.Type != gjson.Null && !sub.IsArray() {
		return Entry{}, fmt.Errorf("subMenu is %s", sub.Type)
	}
	var e Entry
	if err := json.Unmarshal([]byte(item.Raw), &e); err != nil {
		return Entry{}, err
	}
	if e.Subs == nil {
		e.Subs = []SubItem{}
	}
	return e, nil
}

func isFalsy(r gjson.Result) bool {
	switch r.Type {
	case gjson.Null, gjson.False:
		return true
	case gjson.Number:
		return r.Num == 0
	case gjson.String:
		return r.Str == ""
	}
	return false
}
