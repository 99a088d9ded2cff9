package models

import (
	"time"

	checkout "github.com/alovak/cardflow-checkout/checkout/models"
)

// Notification is one stored notification item. Items without a decoded
// payload only carry EventCode and Live.
type Notification struct {
	ID                string           `json:"id"`
	EventCode         string           `json:"event_code"`
	PSPReference      string           `json:"psp_reference,omitempty"`
	MerchantReference string           `json:"merchant_reference,omitempty"`
	MerchantAccount   string           `json:"merchant_account,omitempty"`
	Success           *bool            `json:"success,omitempty"`
	Amount            *checkout.Amount `json:"amount,omitempty"`
	EventDate         string           `json:"event_date,omitempty"`
	Live              bool             `json:"live"`
	ReceivedAt        time.Time        `json:"received_at"`
}

// DedupeKey identifies redeliveries of the same event for the same payment.
// It is empty when the item carries no PSP reference.
func (n *Notification) DedupeKey() string {
	if n.PSPReference == "" {
		return ""
	}
	return n.EventCode + ":" + n.PSPReference
}

// IngestResult counts what happened to the items of one delivery.
type IngestResult struct {
	Stored     int `json:"stored"`
	Duplicates int `json:"duplicates"`
}
