package selection

import (
	"finitefield.org/hanko-store/internal/catalog"
)

// Resolution is the outcome of matching a selection against a product.
type Resolution struct {
	// Variant is the exactly-matched variant, nil when the filled selection
	// does not correspond to any real combination.
	Variant *catalog.Variant

	// Selection is the fully filled-in parameter set: the caller's entries
	// untouched, missing product options filled from the default variant.
	Selection Params
}

// Resolve determines the selected variant for a product and a parameter set.
//
// Missing option keys are filled from the first variant in backend order; keys
// already present are never overwritten, even when their value matches no real
// variant — an unmatched selection is a valid, if unsatisfiable, state. The
// same product and parameters always yield the same result.
func Resolve(p catalog.Product, params Params) Resolution {
	working := params.Clone()

	def := p.DefaultVariant()
	if def != nil {
		for _, opt := range p.Options {
			if _, ok := working.Get(opt.Name); ok {
				continue
			}
			if v, ok := variantValue(*def, opt.Name); ok {
				working = working.With(opt.Name, v)
			}
		}
	}

	return Resolution{
		Variant:   matchVariant(p, working),
		Selection: working,
	}
}

// EffectiveVariant returns the matched variant, or the product's default
// variant for pricing and availability display when nothing matched.
func (r Resolution) EffectiveVariant(p catalog.Product) *catalog.Variant {
	if r.Variant != nil {
		return r.Variant
	}
	return p.DefaultVariant()
}

// SelectableOptions returns the options rendered as user choices. An option
// with a single value carries no decision weight and is excluded, though it
// still participates in variant matching.
func SelectableOptions(p catalog.Product) []catalog.Option {
	out := make([]catalog.Option, 0, len(p.Options))
	for _, opt := range p.Options {
		if len(opt.Values) > 1 {
			out = append(out, opt)
		}
	}
	return out
}

// matchVariant finds the variant whose full option set equals the filled-in
// selection. The comparison is order-independent: every (name, value) pair on
// the variant must be present verbatim in the selection.
func matchVariant(p catalog.Product, filled Params) *catalog.Variant {
	for i := range p.Variants {
		v := &p.Variants[i]
		if len(v.SelectedOptions) != len(p.Options) {
			continue
		}
		matched := true
		for _, pair := range v.SelectedOptions {
			got, ok := filled.Get(pair.Name)
			if !ok || got != pair.Value {
				matched = false
				break
			}
		}
		if matched {
			return v
		}
	}
	return nil
}

func variantValue(v catalog.Variant, optionName string) (string, bool) {
	for _, pair := range v.SelectedOptions {
		if pair.Name == optionName {
			return pair.Value, true
		}
	}
	return "", false
}
