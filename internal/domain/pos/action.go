package pos

import "github.com/google/uuid"

// WindowAction describes a client-side window to open
type WindowAction struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	ViewMode string         `json:"view_mode"`
	ResModel string         `json:"res_model"`
	Target   string         `json:"target"`
	Context  map[string]any `json:"context"`
}

// Action constants
const (
	ActionTypeWindow    = "ir.actions.act_window"
	ActionTargetNew     = "new"
	PaymentModel        = "punto.venta.payment"
	PaymentFormName     = "Registrar Pago"
	ContextDefaultOrder = "default_venta_id"
)

// PaymentFormAction opens the payment entry form as a modal, prefilled with
// this order.
func (o *Order) PaymentFormAction() WindowAction {
	return NewPaymentFormAction(o.ID)
}

// NewPaymentFormAction builds the payment form action for an order ID
func NewPaymentFormAction(orderID uuid.UUID) WindowAction {
	return WindowAction{
		Name:     PaymentFormName,
		Type:     ActionTypeWindow,
		ViewMode: "form",
		ResModel: PaymentModel,
		Target:   ActionTargetNew,
		Context: map[string]any{
			ContextDefaultOrder: orderID,
		},
	}
}
