package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"

	"SensorBridge/internal/model"
	"SensorBridge/internal/parser"
)

// Forwarder sends each reading as a GET request to the remote logging
// endpoint and prints the visible text of the page it answers with.
type Forwarder struct {
	URL       string
	Operation string
	Client    *http.Client
	Out       io.Writer // where the extracted page text is printed
}

// NewForwarder builds a Forwarder. A nil client uses http.DefaultClient.
func NewForwarder(endpoint, operation string, client *http.Client, out io.Writer) *Forwarder {
	return &Forwarder{URL: endpoint, Operation: operation, Client: client, Out: out}
}

// Deliver issues the request. Transport errors and non-2xx statuses are
// returned; the caller logs them and moves on.
func (f *Forwarder) Deliver(ctx context.Context, r model.Reading) error {
	u, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("invalid forward url %q: %w", f.URL, err)
	}
	q := u.Query()
	for k, v := range r.Params(f.Operation) {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			log.Printf("[forward] warning: failed to close response body: %v", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			log.Printf("[forward] warning: failed to drain response body: %v", err)
		}
		return fmt.Errorf("request failed: %s", resp.Status)
	}

	text, err := parser.VisibleText(resp.Body)
	if err != nil {
		log.Printf("[forward] warning: failed to read response page: %v", err)
	}
	if f.Out != nil {
		fmt.Fprintln(f.Out, "Extracted Text:")
		fmt.Fprintln(f.Out, text)
	}
	return nil
}
