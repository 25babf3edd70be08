package category

import (
	"regexp"

	"fjacquet/budget-cli/internal/budgeterror"
	"fjacquet/budget-cli/internal/logging"
	"fjacquet/budget-cli/internal/models"
)

var log = logging.GetLogger()

// SetLogger allows setting a custom logger
func SetLogger(logger logging.Logger) {
	if logger != nil {
		log = logger
	}
}

// Match evaluates the category tree against the ledger. Leaves are visited
// in document order and share a single already-matched accumulator, so a
// transaction is credited only to the first leaf whose rule matches
// (first-match-wins). Group masks are the OR of their descendant leaves.
//
// An invalid pattern fails the whole match with a PatternError naming the
// category; partial results would silently drop a user's categorization.
func Match(l *models.Ledger, tree *Tree) (*MaskSet, error) {
	ms := newMaskSet(l.Len(), tree)
	acc := make([]bool, l.Len())

	for _, root := range tree.Roots {
		var err error
		_, acc, err = matchNode(l, root, acc, ms)
		if err != nil {
			return nil, err
		}
	}

	log.Debug("Matched categories",
		logging.Field{Key: logging.FieldCount, Value: len(ms.leaves)})
	return ms, nil
}

// matchNode folds over the tree, threading the accumulator mask explicitly
// and recording each node's mask in the mask set. Returns the node's own
// mask and the updated accumulator.
func matchNode(l *models.Ledger, node Node, acc []bool, ms *MaskSet) ([]bool, []bool, error) {
	if node.IsLeaf() {
		raw, err := evalRule(l, node.Name, node.Rule)
		if err != nil {
			return nil, nil, err
		}
		matches := make([]bool, len(acc))
		for i := range raw {
			matches[i] = raw[i] && !acc[i]
			if matches[i] {
				acc[i] = true
			}
		}
		ms.masks[node.Name] = matches
		return matches, acc, nil
	}

	group := make([]bool, len(acc))
	for _, child := range node.Children {
		var childMask []bool
		var err error
		childMask, acc, err = matchNode(l, child, acc, ms)
		if err != nil {
			return nil, nil, err
		}
		for i := range childMask {
			group[i] = group[i] || childMask[i]
		}
	}
	ms.masks[node.Name] = group
	return group, acc, nil
}

// evalRule computes the raw match mask for a rule over the full ledger.
// Every pattern compiles as a case-insensitive regex; a list of patterns is
// ANDed by intersecting the individual matches.
func evalRule(l *models.Ledger, category string, rule *Rule) ([]bool, error) {
	mask := make([]bool, l.Len())
	for i := range mask {
		mask[i] = true
	}

	for _, pattern := range rule.Patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, &budgeterror.PatternError{Category: category, Pattern: pattern, Err: err}
		}
		for i := 0; i < l.Len(); i++ {
			mask[i] = mask[i] && re.MatchString(l.At(i).Description)
		}
	}
	return mask, nil
}
