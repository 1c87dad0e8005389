package category

import (
	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// Input carries what the normalizer needs after reconciliation.
type Input struct {
	Label   entity.Result[string] // explicit "Category:" label from the message
	Current entity.Result[string] // reconciled value (usually the model's)
	Vendor  string
	Subject string
	Body    string
}

// Normalizer re-derives the category against the final record values so the
// output is always a taxonomy label.
type Normalizer struct {
	tax *Taxonomy
}

func NewNormalizer(tax *Taxonomy) *Normalizer {
	if tax == nil {
		tax = Default()
	}
	return &Normalizer{tax: tax}
}

// Normalize applies: explicit label > keyword scan > current value mapped into
// the taxonomy > Other.
func (n *Normalizer) Normalize(in Input) entity.Result[string] {
	if label, ok := in.Label.Get(); ok {
		if cat, ok := n.tax.MapLabel(label); ok {
			return entity.Found(string(cat), in.Label.Source())
		}
	}
	if cat, ok := n.tax.Match(in.Vendor, in.Subject, in.Body); ok {
		return entity.Found(string(cat), entity.SourceInferred)
	}
	if cur, ok := in.Current.Get(); ok {
		if cat, ok := n.tax.MapLabel(cur); ok {
			return entity.Found(string(cat), in.Current.Source())
		}
	}
	return entity.Found(string(constants.Other), entity.SourceNone)
}
