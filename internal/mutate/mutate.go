// Package mutate holds the safety rails applied before a write reaches the
// Google Ads API: change previews, dry-run handling and budget caps.
package mutate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMaxBudgetChange is the largest budget delta, in currency units,
// accepted without an explicit override.
const DefaultMaxBudgetChange = 1000

// ErrBudgetCap matches a *BudgetCapError via errors.Is.
var ErrBudgetCap = errors.New("budget change exceeds cap")

// BudgetCapError reports a budget move larger than the cap.
type BudgetCapError struct {
	Delta decimal.Decimal
	Max   decimal.Decimal
}

func (e *BudgetCapError) Error() string {
	return fmt.Sprintf("Budget change of $%s exceeds maximum allowed change of $%s", e.Delta.StringFixed(2), e.Max.String())
}

func (e *BudgetCapError) Is(target error) bool { return target == ErrBudgetCap }

// ChangeKind selects how a change is rendered.
type ChangeKind int

const (
	KindText ChangeKind = iota
	KindStatus
	KindMoney
)

// Change describes one field moving from Old to New. Money changes carry
// micros in OldMicros/NewMicros.
type Change struct {
	Field     string
	Kind      ChangeKind
	Old       string
	New       string
	OldMicros int64
	NewMicros int64
	// Budget marks a money change that is subject to the budget cap.
	Budget bool
}

// Text is a plain field change.
func Text(field, old, new string) Change {
	return Change{Field: field, Kind: KindText, Old: orNone(old), New: orNone(new)}
}

// Status is an entity status change.
func Status(old, new string) Change {
	return Change{Field: "Status", Kind: KindStatus, Old: old, New: new}
}

// Budget is a daily budget change, checked against the cap.
func Budget(oldMicros, newMicros int64) Change {
	return Change{Field: "Budget", Kind: KindMoney, OldMicros: oldMicros, NewMicros: newMicros, Budget: true}
}

// Bid is a CPC bid change.
func Bid(oldMicros, newMicros int64) Change {
	return Change{Field: "Bid", Kind: KindMoney, OldMicros: oldMicros, NewMicros: newMicros}
}

func (c Change) String() string {
	switch c.Kind {
	case KindMoney:
		return fmt.Sprintf("%s: %s → %s", c.Field, money(c.OldMicros), money(c.NewMicros))
	case KindStatus:
		return fmt.Sprintf("Status: %s → %s", c.Old, c.New)
	default:
		return fmt.Sprintf("%s: %s → %s", c.Field, c.Old, c.New)
	}
}

// Guard applies the rails for one write.
type Guard struct {
	DryRun          bool
	MaxBudgetChange decimal.Decimal
}

// NewGuard returns a guard. A non-positive cap falls back to the default.
func NewGuard(dryRun bool, maxBudgetChange float64) Guard {
	max := decimal.NewFromFloat(maxBudgetChange)
	if !max.IsPositive() {
		max = decimal.NewFromInt(DefaultMaxBudgetChange)
	}
	return Guard{DryRun: dryRun, MaxBudgetChange: max}
}

// CheckBudget validates a budget move. It fails above the cap and warns when
// the move exceeds half of a non-zero previous budget.
func (g Guard) CheckBudget(oldMicros, newMicros int64) (string, error) {
	oldUnits := decimal.New(oldMicros, -6)
	delta := decimal.New(newMicros, -6).Sub(oldUnits).Abs()

	if g.MaxBudgetChange.IsPositive() && delta.GreaterThan(g.MaxBudgetChange) {
		return "", &BudgetCapError{Delta: delta, Max: g.MaxBudgetChange}
	}
	if oldUnits.IsZero() {
		return "", nil
	}
	pct := delta.Div(oldUnits).Mul(decimal.NewFromInt(100))
	if pct.GreaterThan(decimal.NewFromInt(50)) {
		return fmt.Sprintf("Large budget change detected: %s%% change", pct.StringFixed(1)), nil
	}
	return "", nil
}

// Preview is the human-readable summary of a pending write.
type Preview struct {
	DryRun   bool
	Entity   string
	Name     string
	Changes  []Change
	Warnings []string
}

// Preview checks every budget change and assembles the preview. A change over
// the cap fails the whole write.
func (g Guard) Preview(entity, name string, changes []Change) (Preview, error) {
	p := Preview{DryRun: g.DryRun, Entity: entity, Name: name, Changes: changes}
	for _, c := range changes {
		if !c.Budget {
			continue
		}
		warning, err := g.CheckBudget(c.OldMicros, c.NewMicros)
		if err != nil {
			return Preview{}, err
		}
		if warning != "" {
			p.Warnings = append(p.Warnings, warning)
		}
	}
	return p, nil
}

// Render formats the preview as markdown.
func (p Preview) Render() string {
	var b strings.Builder
	if p.DryRun {
		b.WriteString("# DRY RUN MODE\n\n")
	} else {
		b.WriteString("# CHANGES TO BE APPLIED\n\n")
	}
	b.WriteString(fmt.Sprintf("%s: %s\n\n", p.Entity, p.Name))

	b.WriteString("## Changes\n")
	for _, c := range p.Changes {
		b.WriteString("- " + c.String() + "\n")
	}
	if len(p.Warnings) > 0 {
		b.WriteString("\n## Warnings\n")
		for _, w := range p.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	b.WriteString("\n")
	if p.DryRun {
		b.WriteString("No changes will be applied (dry run mode)")
	} else {
		b.WriteString("These changes will be applied immediately")
	}
	return b.String()
}

// Micros converts a currency amount to micros, rounding to the nearest micro.
func Micros(units float64) int64 {
	return decimal.NewFromFloat(units).Shift(6).Round(0).IntPart()
}

func money(micros int64) string {
	return "$" + decimal.New(micros, -6).StringFixed(2)
}

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "None"
	}
	return s
}
