package xero

import (
	"context"
	"fmt"
	"net/http"
)

// CreateQuote creates a quote and returns the stored version
func (c *Client) CreateQuote(ctx context.Context, s *Session, quote Quote) (*Quote, error) {
	quote.QuoteID = ""

	var env quotesEnvelope
	req := map[string][]Quote{"Quotes": {quote}}
	if err := c.do(ctx, s, http.MethodPut, "/Quotes", nil, req, &env); err != nil {
		return nil, err
	}
	if len(env.Quotes) == 0 {
		return nil, fmt.Errorf("%w: empty quotes reply", ErrInvalidResponse)
	}
	return &env.Quotes[0], nil
}
