package entity

// Source tags where an extracted value came from.
type Source string

const (
	SourceModel      Source = "model"
	SourceRegex      Source = "regex"
	SourceHTMLLogo   Source = "html-logo"
	SourceContextual Source = "contextual"
	SourceInferred   Source = "inferred"
	SourceNone       Source = "none"
)

// Result is a single extraction outcome: a value or absence, plus the source
// that produced it. The zero value is an absent result tagged SourceNone.
type Result[T any] struct {
	value  T
	ok     bool
	source Source
}

// Found wraps a matched value.
func Found[T any](v T, src Source) Result[T] {
	return Result[T]{value: v, ok: true, source: src}
}

// Absent is a miss.
func Absent[T any]() Result[T] {
	return Result[T]{source: SourceNone}
}

// Get returns the value and whether one is present.
func (r Result[T]) Get() (T, bool) { return r.value, r.ok }

// OK reports whether a value is present.
func (r Result[T]) OK() bool { return r.ok }

// Value returns the value, or T's zero value when absent.
func (r Result[T]) Value() T { return r.value }

// Source returns the tag; absent results always report SourceNone.
func (r Result[T]) Source() Source {
	if !r.ok || r.source == "" {
		return SourceNone
	}
	return r.source
}

// Ptr returns a copy of the value, or nil when absent.
func (r Result[T]) Ptr() *T {
	if !r.ok {
		return nil
	}
	v := r.value
	return &v
}

// Or returns r when present and fallback otherwise.
func (r Result[T]) Or(fallback Result[T]) Result[T] {
	if r.ok {
		return r
	}
	return fallback
}

// Field names shared by provenance, metrics and the model prompt.
const (
	FieldVendor         = "vendor"
	FieldTotalAmount    = "total_amount"
	FieldOrderDate      = "order_date"
	FieldFormOfPayment  = "form_of_payment"
	FieldCardType       = "card_type"
	FieldCardLast4      = "card_last4"
	FieldCategory       = "category"
	FieldTrackingNumber = "tracking_number"
)

// ExtractedFields lists every extracted field in canonical order.
var ExtractedFields = []string{
	FieldVendor,
	FieldTotalAmount,
	FieldOrderDate,
	FieldFormOfPayment,
	FieldCardType,
	FieldCardLast4,
	FieldCategory,
	FieldTrackingNumber,
}

// Provenance records the winning source per field for one pipeline run.
type Provenance map[string]Source
