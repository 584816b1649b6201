package provider

import (
	"context"
	"net/http"
	"net/url"

	"folio/internal/httputil"
)

// fetchOEmbed calls an oEmbed endpoint under policy and reports the HTML it
// found together with an Attempt describing the call.
func fetchOEmbed(ctx context.Context, client *http.Client, policy httputil.Policy, source, endpoint string, params url.Values) (string, Attempt) {
	reqURL := httputil.WithQuery(endpoint, params)

	body, tries, err := httputil.Retry(ctx, policy, func(ctx context.Context) ([]byte, error) {
		return httputil.GetJSON(ctx, client, reqURL)
	})
	a := Attempt{Source: source, Tries: tries}
	if err != nil {
		a.Outcome = OutcomeFailed
		a.Err = err
		return "", a
	}

	html, err := parseOEmbed(body)
	if err != nil {
		a.Outcome = OutcomeFailed
		a.Err = err
		return "", a
	}
	if html == "" {
		a.Outcome = OutcomeEmpty
		return "", a
	}

	a.Outcome = OutcomeOK
	return html, a
}
