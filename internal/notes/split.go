package notes

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SplitRule computes one category's share of a transaction. Modify is a pure
// function of the original stored amount; it is never applied cumulatively.
type SplitRule interface {
	Modify(original decimal.Decimal) decimal.Decimal
	String() string
}

// SplitPart pairs a rule with the category it targets. An empty category is
// the split's bare part, applied in the raw/unselected context.
type SplitPart struct {
	Category string
	Rule     SplitRule
}

func (p SplitPart) String() string {
	if p.Category == "" {
		return p.Rule.String()
	}
	return p.Rule.String() + " " + p.Category
}

// Percentage scales the original amount by N%.
type Percentage struct {
	Percent int64
}

// Modify returns original * percent / 100.
func (r Percentage) Modify(original decimal.Decimal) decimal.Decimal {
	return original.Mul(decimal.New(r.Percent, -2))
}

func (r Percentage) String() string {
	return strconv.FormatInt(r.Percent, 10) + "%"
}

// Fraction scales the original amount by num/denom.
type Fraction struct {
	Num   int64
	Denom int64
}

// Modify returns original * num / denom.
func (r Fraction) Modify(original decimal.Decimal) decimal.Decimal {
	return original.Mul(decimal.NewFromInt(r.Num)).Div(decimal.NewFromInt(r.Denom))
}

func (r Fraction) String() string {
	return strconv.FormatInt(r.Num, 10) + "/" + strconv.FormatInt(r.Denom, 10)
}

// FixedAmount replaces the original amount outright.
type FixedAmount struct {
	Value decimal.Decimal
}

// Modify returns the fixed value regardless of the original amount.
func (r FixedAmount) Modify(decimal.Decimal) decimal.Decimal {
	return r.Value
}

func (r FixedAmount) String() string {
	return r.Value.String()
}

// Sub-grammar patterns for one split part, tried in order: percentage,
// fraction, then fixed amount (signed decimal, optional currency symbol).
var (
	percentageRe  = regexp.MustCompile(`^(\d+)%$`)
	fractionRe    = regexp.MustCompile(`^(\d+)/(\d+)$`)
	fixedAmountRe = regexp.MustCompile(`^-?\$?\d+(\.\d+)?$`)
)

// parseSplitParts parses the comma-separated payload of a split note. Each
// part is a rule optionally followed by a category name, which may itself
// contain spaces ("50% Eating Out").
func parseSplitParts(payload string) ([]SplitPart, error) {
	rawParts := strings.Split(payload, ",")
	parts := make([]SplitPart, 0, len(rawParts))

	for _, raw := range rawParts {
		fields := strings.Fields(strings.TrimSpace(raw))
		if len(fields) == 0 {
			return nil, fmt.Errorf("empty split part in '%s'", payload)
		}

		rule, err := parseSplitRule(fields[0])
		if err != nil {
			return nil, err
		}
		parts = append(parts, SplitPart{
			Category: strings.Join(fields[1:], " "),
			Rule:     rule,
		})
	}
	return parts, nil
}

func parseSplitRule(token string) (SplitRule, error) {
	if m := percentageRe.FindStringSubmatch(token); m != nil {
		percent, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid percentage '%s': %w", token, err)
		}
		return Percentage{Percent: percent}, nil
	}

	if m := fractionRe.FindStringSubmatch(token); m != nil {
		num, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fraction '%s': %w", token, err)
		}
		denom, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid fraction '%s': %w", token, err)
		}
		if denom == 0 {
			return nil, fmt.Errorf("fraction '%s' has a zero denominator", token)
		}
		return Fraction{Num: num, Denom: denom}, nil
	}

	if fixedAmountRe.MatchString(token) {
		value, err := decimal.NewFromString(strings.Replace(token, "$", "", 1))
		if err != nil {
			return nil, fmt.Errorf("invalid amount '%s': %w", token, err)
		}
		return FixedAmount{Value: value}, nil
	}

	return nil, fmt.Errorf("'%s' is not a percentage, fraction, or amount", token)
}
