package xero

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetItemByCode fetches an item by code. A missing item is (nil, nil).
func (c *Client) GetItemByCode(ctx context.Context, s *Session, code string) (*Item, error) {
	var env itemsEnvelope
	err := c.do(ctx, s, http.MethodGet, "/Items/"+url.PathEscape(code), nil, nil, &env)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(env.Items) == 0 {
		return nil, nil
	}
	return &env.Items[0], nil
}

// CreateItem creates an item and returns the stored version
func (c *Client) CreateItem(ctx context.Context, s *Session, item Item) (*Item, error) {
	item.ItemID = ""

	var env itemsEnvelope
	req := map[string][]Item{"Items": {item}}
	if err := c.do(ctx, s, http.MethodPut, "/Items", nil, req, &env); err != nil {
		return nil, err
	}
	if len(env.Items) == 0 {
		return nil, fmt.Errorf("%w: empty items reply", ErrInvalidResponse)
	}
	return &env.Items[0], nil
}
