package models

// CheckoutRequest is the POST /orders body. CustomerID is trusted for an
// authenticated principal; authorization happens at the boundary.
type CheckoutRequest struct {
	EventID         string     `json:"event_id"`
	CalendarID      string     `json:"calendar_id"`
	CustomerID      string     `json:"customer_id"`
	TicketType      TicketType `json:"ticket_type"`
	NumberOfTickets int        `json:"number_of_tickets"`
	TotalAmount     float64    `json:"total_amount"`
}

// CheckoutResponse carries the external order id the claimed tickets were
// tagged with and the provider link the payer is redirected to.
type CheckoutResponse struct {
	OrderID     string   `json:"order_id"`
	PaymentLink string   `json:"payment_link"`
	TicketIDs   []string `json:"ticket_ids"`
}

// CaptureCompleted is the provider status that finalizes an order.
const CaptureCompleted = "COMPLETED"
