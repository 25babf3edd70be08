package category

import (
	"fjacquet/budget-cli/internal/budgeterror"
)

// MaskSet holds the selection masks produced by Match: one boolean vector
// per node, indexed by ledger position. Leaf masks are mutually exclusive by
// construction; group masks are the OR of their descendant leaves.
type MaskSet struct {
	size   int
	leaves []string
	names  []string
	masks  map[string][]bool
}

func newMaskSet(size int, tree *Tree) *MaskSet {
	return &MaskSet{
		size:   size,
		leaves: tree.Leaves(),
		names:  tree.Names(),
		masks:  make(map[string][]bool, len(tree.Names())),
	}
}

// NewMaskSet reconstructs a MaskSet from stored columns, used when loading a
// saved database. Names cover every node, leaves and groups alike, in the
// order the columns were saved in; leaves is the subset that carries rules.
func NewMaskSet(size int, leaves, names []string, masks map[string][]bool) *MaskSet {
	return &MaskSet{size: size, leaves: leaves, names: names, masks: masks}
}

// Size returns the ledger length the masks were computed against.
func (ms *MaskSet) Size() int {
	return ms.size
}

// Leaves returns the leaf category names in document order.
func (ms *MaskSet) Leaves() []string {
	out := make([]string, len(ms.leaves))
	copy(out, ms.leaves)
	return out
}

// Names returns every mask name, leaves and groups, in document order.
func (ms *MaskSet) Names() []string {
	out := make([]string, len(ms.names))
	copy(out, ms.names)
	return out
}

// Mask returns the selection mask for a category or group name. Unknown
// names report the valid ones.
func (ms *MaskSet) Mask(name string) ([]bool, error) {
	mask, ok := ms.masks[name]
	if !ok {
		return nil, &budgeterror.UnknownCategoryError{Category: name, Valid: ms.names}
	}
	return mask, nil
}

// Has reports whether the name is a known category or group.
func (ms *MaskSet) Has(name string) bool {
	_, ok := ms.masks[name]
	return ok
}

// Unselected returns the mask of transactions not claimed by any leaf.
func (ms *MaskSet) Unselected() []bool {
	out := make([]bool, ms.size)
	for i := range out {
		out[i] = true
	}
	for _, leaf := range ms.leaves {
		for i, v := range ms.masks[leaf] {
			if v {
				out[i] = false
			}
		}
	}
	return out
}
