package orders

import (
	"strconv"
	"strings"
)

// extraInfoSlots is the number of fixed extra-info fields per order line
const extraInfoSlots = 4

// Item is one canonical order line
type Item struct {
	// ProductRef is either the decoded internal product id or a raw SKU
	ProductRef string
	Quantity   int
	// RawSKU is true when ProductRef was resolved from a raw SKU rather
	// than a decodable internal id. Raw-SKU lines never merge.
	RawSKU bool
	// ExtraInfo carries the fixed provider pass-through fields
	ExtraInfo [extraInfoSlots]string
}

// RawItem is an incoming order line as received from the caller
type RawItem struct {
	// ID is the encoded internal product id; preferred over SKU
	ID string
	// SKU is the fallback raw product reference
	SKU      string
	Quantity int
	Info1    string
	Info2    string
	Info3    string
	Info4    string
}

// extraInfo returns the fixed info fields as a slot array
func (ri *RawItem) extraInfo() [extraInfoSlots]string {
	return [extraInfoSlots]string{ri.Info1, ri.Info2, ri.Info3, ri.Info4}
}

// resolveRef resolves the product reference of a raw item. It prefers a
// decodable internal id and falls back to the raw SKU. The second return
// value reports whether the SKU fallback was used.
func (ri *RawItem) resolveRef() (ref string, viaSKU bool, ok bool) {
	if id := strings.TrimSpace(ri.ID); id != "" {
		if n, err := strconv.Atoi(id); err == nil && n > 0 {
			return strconv.Itoa(n), false, true
		}
	}
	if sku := strings.TrimSpace(ri.SKU); sku != "" {
		return sku, true, true
	}
	return "", false, false
}

// MergeItems validates and merges incoming raw items into an existing
// canonical line list. Items without a resolvable product reference or with
// a zero/absent quantity are skipped. A line that carries an explicit raw
// SKU is always appended; otherwise a line with the same resolved reference
// absorbs the quantity. rawSKUMode forces append-only behavior for the whole
// batch. The input slice is not mutated.
func MergeItems(existing []Item, incoming []RawItem, rawSKUMode bool) []Item {
	merged := make([]Item, len(existing))
	copy(merged, existing)

	for i := range incoming {
		raw := &incoming[i]

		ref, viaSKU, ok := raw.resolveRef()
		if !ok || raw.Quantity <= 0 {
			continue
		}

		appendOnly := rawSKUMode || viaSKU
		if !appendOnly {
			if line := findByRef(merged, ref); line != nil {
				line.Quantity += raw.Quantity
				copyExtraInfo(line, raw)
				continue
			}
		}

		item := Item{
			ProductRef: ref,
			Quantity:   raw.Quantity,
			RawSKU:     viaSKU,
		}
		copyExtraInfo(&item, raw)
		merged = append(merged, item)
	}

	return merged
}

// findByRef returns the first mergeable line with the given reference
func findByRef(items []Item, ref string) *Item {
	for i := range items {
		if !items[i].RawSKU && items[i].ProductRef == ref {
			return &items[i]
		}
	}
	return nil
}

// copyExtraInfo copies the fixed info fields that are present and non-empty
func copyExtraInfo(item *Item, raw *RawItem) {
	for slot, value := range raw.extraInfo() {
		if value != "" {
			item.ExtraInfo[slot] = value
		}
	}
}
