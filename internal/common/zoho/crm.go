package zoho

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the Zoho CRM v3 API, the authoritative backend for the
// collections that are not mirrored into the local replica.
type Client struct {
	oauthToken string
	baseURL    string
	httpClient *http.Client
}

// SearchCriteria is the logical filter set for a CRM module search. Temporal
// bounds are serialized to ISO-8601 on the wire; the upstream API rejects
// anything else.
type SearchCriteria struct {
	From       *time.Time
	To         *time.Time
	OwnerEmail string
	Word       string
	Limit      int
}

const defaultBaseURL = "https://www.zohoapis.com/crm/v3"

func NewClient(oauthToken, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		oauthToken: oauthToken,
		baseURL:    baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SearchDeals searches the Deals module.
func (c *Client) SearchDeals(ctx context.Context, criteria SearchCriteria) ([]map[string]interface{}, error) {
	return c.search(ctx, "Deals", criteria)
}

// SearchMeetings searches the Events module (meetings in CRM terms).
func (c *Client) SearchMeetings(ctx context.Context, criteria SearchCriteria) ([]map[string]interface{}, error) {
	return c.search(ctx, "Events", criteria)
}

func (c *Client) search(ctx context.Context, module string, criteria SearchCriteria) ([]map[string]interface{}, error) {
	params := url.Values{}

	if expr := buildCriteria(criteria); expr != "" {
		params.Set("criteria", expr)
	}
	if criteria.Word != "" {
		params.Set("word", criteria.Word)
	}
	if criteria.Limit > 0 {
		params.Set("per_page", fmt.Sprintf("%d", criteria.Limit))
	}

	searchURL := fmt.Sprintf("%s/%s/search", c.baseURL, module)
	if encoded := params.Encode(); encoded != "" {
		searchURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Zoho-oauthtoken "+c.oauthToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	// Zoho returns 204 when the search matched nothing.
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to search %s (status %d): %s", module, resp.StatusCode, string(body))
	}

	var result struct {
		Data []map[string]interface{} `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Data, nil
}

// buildCriteria assembles the Zoho criteria expression. Each clause is
// (Field:operator:value); clauses are conjoined with "and".
func buildCriteria(criteria SearchCriteria) string {
	clauses := make([]string, 0, 3)

	if criteria.From != nil {
		clauses = append(clauses,
			fmt.Sprintf("(Modified_Time:greater_equal:%s)", criteria.From.Format(time.RFC3339)))
	}
	if criteria.To != nil {
		clauses = append(clauses,
			fmt.Sprintf("(Modified_Time:less_equal:%s)", criteria.To.Format(time.RFC3339)))
	}
	if criteria.OwnerEmail != "" {
		clauses = append(clauses,
			fmt.Sprintf("(Owner.email:equals:%s)", criteria.OwnerEmail))
	}

	return strings.Join(clauses, "and")
}
