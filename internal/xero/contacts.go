package xero

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetContacts lists every contact in the selected organisation
func (c *Client) GetContacts(ctx context.Context, s *Session) ([]Contact, error) {
	var env contactsEnvelope
	if err := c.do(ctx, s, http.MethodGet, "/Contacts", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.Contacts, nil
}

// FindContactByName returns the first contact with exactly this name, or nil
func (c *Client) FindContactByName(ctx context.Context, s *Session, name string) (*Contact, error) {
	query := url.Values{}
	query.Set("where", fmt.Sprintf(`Name=="%s"`, strings.ReplaceAll(name, `"`, `\"`)))

	var env contactsEnvelope
	if err := c.do(ctx, s, http.MethodGet, "/Contacts", query, nil, &env); err != nil {
		return nil, err
	}
	if len(env.Contacts) == 0 {
		return nil, nil
	}
	return &env.Contacts[0], nil
}

// CreateContact creates a contact and returns the stored version
func (c *Client) CreateContact(ctx context.Context, s *Session, contact Contact) (*Contact, error) {
	contact.ContactID = ""

	var env contactsEnvelope
	req := map[string][]Contact{"Contacts": {contact}}
	if err := c.do(ctx, s, http.MethodPut, "/Contacts", nil, req, &env); err != nil {
		return nil, err
	}
	if len(env.Contacts) == 0 {
		return nil, fmt.Errorf("%w: empty contacts reply", ErrInvalidResponse)
	}
	return &env.Contacts[0], nil
}
