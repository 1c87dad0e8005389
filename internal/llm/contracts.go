package llm

import (
	"context"

	"github.com/joseph-ayodele/receipts-inbox/constants"
	"github.com/joseph-ayodele/receipts-inbox/internal/entity"
)

// Completer sends one prompt to a completion service and returns the raw text
// of the reply. Implementations must honour ctx cancellation.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Request is what the model sees of one message.
type Request struct {
	Sender  string
	Subject string
	Text    string // normalized text
}

// ModelFields is the model's proposal for every extracted field. Present
// values are tagged entity.SourceModel; the zero value proposes nothing.
type ModelFields struct {
	Vendor         entity.Result[string]
	TotalAmount    entity.Result[entity.Money]
	OrderDate      entity.Result[entity.Date]
	FormOfPayment  entity.Result[constants.FormOfPayment]
	CardType       entity.Result[constants.CardNetwork]
	CardLast4      entity.Result[string]
	Category       entity.Result[string]
	TrackingNumber entity.Result[string]
}

// Count reports how many fields the model supplied.
func (f ModelFields) Count() int {
	n := 0
	for _, ok := range []bool{
		f.Vendor.OK(), f.TotalAmount.OK(), f.OrderDate.OK(), f.FormOfPayment.OK(),
		f.CardType.OK(), f.CardLast4.OK(), f.Category.OK(), f.TrackingNumber.OK(),
	} {
		if ok {
			n++
		}
	}
	return n
}

// reply is the validated JSON document returned by the model.
type reply struct {
	Vendor         *string `json:"vendor"`
	TotalAmount    *string `json:"total_amount"`
	OrderDate      *string `json:"order_date"`
	FormOfPayment  *string `json:"form_of_payment"`
	CardType       *string `json:"card_type"`
	CardLast4      *string `json:"card_last4"`
	Category       *string `json:"category"`
	TrackingNumber *string `json:"tracking_number"`
}
