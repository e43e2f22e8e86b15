package xero

import "strings"

// Contact mirrors the Xero Contact resource fields this service reads or writes
type Contact struct {
	ContactID     string    `json:"ContactID,omitempty" validate:"required"`
	Name          string    `json:"Name" validate:"required"`
	EmailAddress  string    `json:"EmailAddress,omitempty"`
	ContactStatus string    `json:"ContactStatus,omitempty"`
	IsCustomer    bool      `json:"IsCustomer,omitempty"`
	IsSupplier    bool      `json:"IsSupplier,omitempty"`
	Phones        []Phone   `json:"Phones,omitempty"`
	Addresses     []Address `json:"Addresses,omitempty"`
}

type Phone struct {
	PhoneType        string `json:"PhoneType"`
	PhoneNumber      string `json:"PhoneNumber,omitempty"`
	PhoneAreaCode    string `json:"PhoneAreaCode,omitempty"`
	PhoneCountryCode string `json:"PhoneCountryCode,omitempty"`
}

type Address struct {
	AddressType  string `json:"AddressType"`
	AddressLine1 string `json:"AddressLine1,omitempty"`
	AddressLine2 string `json:"AddressLine2,omitempty"`
	City         string `json:"City,omitempty"`
	Region       string `json:"Region,omitempty"`
	PostalCode   string `json:"PostalCode,omitempty"`
	Country      string `json:"Country,omitempty"`
}

// Archived reports whether the contact has been archived in Xero
func (c Contact) Archived() bool {
	return c.ContactStatus == "ARCHIVED"
}

// PrimaryPhone returns the default phone, falling back to mobile
func (c Contact) PrimaryPhone() string {
	for _, kind := range []string{"DEFAULT", "MOBILE"} {
		for _, p := range c.Phones {
			if p.PhoneType != kind || p.PhoneNumber == "" {
				continue
			}
			return strings.TrimSpace(strings.Join(nonEmpty(p.PhoneAreaCode, p.PhoneNumber), " "))
		}
	}
	return ""
}

// PrimaryAddress formats the street address, falling back to the postal one
func (c Contact) PrimaryAddress() string {
	for _, kind := range []string{"STREET", "POBOX"} {
		for _, a := range c.Addresses {
			if a.AddressType != kind {
				continue
			}
			if s := strings.Join(nonEmpty(a.AddressLine1, a.AddressLine2, a.City, a.Region, a.PostalCode, a.Country), ", "); s != "" {
				return s
			}
		}
	}
	return ""
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Item mirrors the Xero Item resource
type Item struct {
	ItemID          string       `json:"ItemID,omitempty" validate:"required"`
	Code            string       `json:"Code" validate:"required"`
	Name            string       `json:"Name,omitempty"`
	Description     string       `json:"Description,omitempty"`
	IsSold          bool         `json:"IsSold"`
	IsPurchased     bool         `json:"IsPurchased"`
	SalesDetails    *ItemDetails `json:"SalesDetails,omitempty"`
	PurchaseDetails *ItemDetails `json:"PurchaseDetails,omitempty"`
}

type ItemDetails struct {
	UnitPrice   float64 `json:"UnitPrice,omitempty"`
	AccountCode string  `json:"AccountCode,omitempty"`
}

// ContactRef references an existing contact inside a document
type ContactRef struct {
	ContactID string `json:"ContactID" validate:"required"`
}

// Quote mirrors the Xero Quote resource
type Quote struct {
	QuoteID     string     `json:"QuoteID,omitempty" validate:"required"`
	QuoteNumber string     `json:"QuoteNumber,omitempty"`
	Contact     ContactRef `json:"Contact"`
	Date        string     `json:"Date,omitempty"`
	ExpiryDate  string     `json:"ExpiryDate,omitempty"`
	Title       string     `json:"Title,omitempty"`
	Summary     string     `json:"Summary,omitempty"`
	Reference   string     `json:"Reference,omitempty"`
	Status      string     `json:"Status,omitempty"`
	LineItems   []LineItem `json:"LineItems"`
	Total       float64    `json:"Total,omitempty"`
}

type LineItem struct {
	Description string  `json:"Description"`
	Quantity    float64 `json:"Quantity"`
	UnitAmount  float64 `json:"UnitAmount"`
	ItemCode    string  `json:"ItemCode,omitempty"`
	AccountCode string  `json:"AccountCode,omitempty"`
}

// Connection is one organisation the user authorised
type Connection struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId" validate:"required"`
	TenantType string `json:"tenantType"`
	TenantName string `json:"tenantName"`
}

type contactsEnvelope struct {
	Contacts []Contact `json:"Contacts" validate:"dive"`
}

type itemsEnvelope struct {
	Items []Item `json:"Items" validate:"dive"`
}

type quotesEnvelope struct {
	Quotes []Quote `json:"Quotes" validate:"dive"`
}

// apiErrorBody covers the error shapes the accounting API and identity
// endpoints return
type apiErrorBody struct {
	Message  string `json:"Message"`
	Detail   string `json:"Detail"`
	Title    string `json:"Title"`
	Error    string `json:"error"`
	Elements []struct {
		ValidationErrors []struct {
			Message string `json:"Message"`
		} `json:"ValidationErrors"`
	} `json:"Elements"`
}

func (b apiErrorBody) detail() string {
	for _, el := range b.Elements {
		for _, ve := range el.ValidationErrors {
			if ve.Message != "" {
				return ve.Message
			}
		}
	}
	for _, s := range []string{b.Message, b.Detail, b.Title, b.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}
