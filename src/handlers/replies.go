package handlers

import (
	"github.com/username/receiptcheck/backend/src/models"
)

// Reply envelopes. Every endpoint answers with a success flag; list endpoints
// add items, failures add a message.

type statusReply struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type listReply struct {
	Success bool        `json:"success"`
	Items   interface{} `json:"items"`
}

func successReply() statusReply {
	return statusReply{Success: true}
}

func errorReply(message string) statusReply {
	return statusReply{Success: false, Message: message}
}

// ticketLineReply is one row of the ticket listing. Type distinguishes lines
// whose product has a full category assignment from the rest.
type ticketLineReply struct {
	Type     string  `json:"type"`
	Date     string  `json:"date"`
	Category string  `json:"category,omitempty"`
	Name     string  `json:"name,omitempty"`
	Product  string  `json:"product,omitempty"`
	Quantity float64 `json:"quantity"`
	Sum      float64 `json:"sum"`
}

func newTicketLineReply(line models.TicketLine) ticketLineReply {
	if line.Category != nil && line.Name != nil {
		return ticketLineReply{
			Type:     "Categorized",
			Date:     line.Date,
			Category: *line.Category,
			Name:     *line.Name,
			Quantity: line.Quantity,
			Sum:      line.Sum,
		}
	}
	return ticketLineReply{
		Type:     "Uncategorized",
		Date:     line.Date,
		Product:  line.Product,
		Quantity: line.Quantity,
		Sum:      line.Sum,
	}
}

// productReply is one row of the category listing; unassigned columns render
// as empty strings.
type productReply struct {
	Product  string `json:"product"`
	Category string `json:"category"`
	Name     string `json:"name"`
}

func newProductReply(product models.ProductCategory) productReply {
	reply := productReply{Product: product.Product}
	if product.Category != nil {
		reply.Category = *product.Category
	}
	if product.Name != nil {
		reply.Name = *product.Name
	}
	return reply
}
