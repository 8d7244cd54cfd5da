package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/oparl-tools/oparl-client/pkg/oparl/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

//Transport fetches a single JSON document by URL
type Transport interface {
	FetchJSON(ctx context.Context, url string) (map[string]any, error)
}

type TransportOption func(*httpTransport)

func Debug(enabled string) TransportOption {
	return func(t *httpTransport) {
		t.debug = (enabled == "true")
	}
}

//SkipTLSVerify disables verification of server certificates. Verification
//is on by default.
func SkipTLSVerify() TransportOption {
	return func(t *httpTransport) {
		t.skipVerify = true
	}
}

func NewTransport(options ...TransportOption) Transport {
	t := &httpTransport{}

	for _, option := range options {
		option(t)
	}

	base := http.DefaultTransport
	if t.skipVerify {
		base = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	t.httpClient = &http.Client{
		Transport: otelhttp.NewTransport(base),
	}

	return t
}

const TraceAttributeURL string = "oparl-url"

var tracer = otel.Tracer("oparl-client/transport")

type httpTransport struct {
	debug      bool
	skipVerify bool
	httpClient *http.Client
}

func (t *httpTransport) FetchJSON(ctx context.Context, url string) (map[string]any, error) {
	var err error

	ctx, span := tracer.Start(ctx, "fetch-json",
		trace.WithAttributes(attribute.String(TraceAttributeURL, url)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("failed to create request: %s (%w)", err.Error(), errors.ErrInternal)
		return nil, err
	}

	req.Header.Add("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to send request: %s (%w)", err.Error(), errors.ErrTransport)
		return nil, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body: %s (%w)", err.Error(), errors.ErrBadResponse)
		return nil, err
	}

	if t.debug && resp.StatusCode >= http.StatusBadRequest {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
	}

	if resp.StatusCode == http.StatusNotFound {
		err = errors.NewNotFoundError(fmt.Sprintf("no document at %s", url))
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		err = errors.NewTransportError(resp.StatusCode,
			fmt.Sprintf("unexpected response code %d from %s", resp.StatusCode, url))
		return nil, err
	}

	var doc map[string]any
	err = json.Unmarshal(body, &doc)
	if err != nil {
		err = errors.NewMalformedDocumentError(
			fmt.Sprintf("response from %s is not a JSON object: %s", url, err.Error()))
		return nil, err
	}

	return doc, nil
}
