// Package tfs talks to the work item tracking REST API of Team Foundation
// Server and Azure DevOps collections.
package tfs

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/rs/zerolog"

	"github.com/yahsan2/srs-exporter/pkg/config"
	"github.com/yahsan2/srs-exporter/pkg/project"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

const (
	defaultAPIVersion = "5.0"
	userAgent         = "srs-exporter"

	// maxBatchSize is the largest id list the batch endpoint accepts per call
	maxBatchSize = 200
)

// Options configures a Client
type Options struct {
	Connection config.ConnectionConfig
	// Password is the resolved password; Connection.Password is ignored
	Password string
	Logger   zerolog.Logger
	// HTTPLog receives request and response dumps when set
	HTTPLog io.Writer
}

// Client is a work item tracking session over a single HTTP transport
type Client struct {
	rest       *api.RESTClient
	transport  *http.Transport
	urls       *project.URLBuilder
	apiVersion string
	logger     zerolog.Logger
}

var _ workitem.Session = (*Client)(nil)

// NewClient creates a client for the configured collection and project
func NewClient(opts Options) (*Client, error) {
	conn := opts.Connection
	urls := project.NewURLBuilder(&conn)

	collectionURL := urls.GetCollectionURL()
	if collectionURL == "" {
		return nil, workitem.NewConfigurationError("endpoint and collection are required", nil)
	}
	if conn.Project == "" {
		return nil, workitem.NewConfigurationError("project is required", nil)
	}
	u, err := url.Parse(collectionURL)
	if err != nil || u.Hostname() == "" {
		return nil, workitem.NewConfigurationError(fmt.Sprintf("invalid collection URL %q", collectionURL), err)
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: conn.Insecure,
		},
	}

	token := basicAuthToken(conn.Username, opts.Password)
	restClient, err := api.NewRESTClient(api.ClientOptions{
		Host:      u.Hostname(),
		AuthToken: token,
		Headers: map[string]string{
			"Authorization": "Basic " + token,
			"Accept":        "application/json",
			"Content-Type":  "application/json",
			"User-Agent":    userAgent,
		},
		Transport:      transport,
		Timeout:        conn.Timeout,
		Log:            opts.HTTPLog,
		LogIgnoreEnv:   true,
		LogVerboseHTTP: opts.HTTPLog != nil,
	})
	if err != nil {
		return nil, workitem.NewAPIError("failed to create REST client", err)
	}

	apiVersion := conn.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}

	return &Client{
		rest:       restClient,
		transport:  transport,
		urls:       urls,
		apiVersion: apiVersion,
		logger:     opts.Logger,
	}, nil
}

// QueryByText runs a WIQL query and returns work item ids in result order
func (c *Client) QueryByText(ctx context.Context, query string) (workitem.QueryResult, error) {
	var resp WiqlResponse
	if err := c.post(ctx, "wiql", WiqlRequest{Query: query}, &resp); err != nil {
		return workitem.QueryResult{}, err
	}

	ids := make([]int, 0, len(resp.WorkItems))
	for _, ref := range resp.WorkItems {
		ids = append(ids, ref.ID)
	}

	c.logger.Debug().Int("count", len(ids)).Str("as_of", resp.AsOf).Msg("wiql query completed")

	return workitem.QueryResult{IDs: ids, AsOf: resp.AsOf}, nil
}

// GetFields reads the named fields of ids as of the given snapshot. Id lists
// longer than the batch endpoint allows are read in consecutive chunks that
// share asOf, and the records come back in id order.
func (c *Client) GetFields(ctx context.Context, ids []int, fields []string, asOf string) ([]workitem.Record, error) {
	records := make([]workitem.Record, 0, len(ids))
	for start := 0; start < len(ids); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk, err := c.getBatch(ctx, ids[start:end], fields, asOf)
		if err != nil {
			return nil, err
		}
		records = append(records, chunk...)
	}
	return records, nil
}

func (c *Client) getBatch(ctx context.Context, ids []int, fields []string, asOf string) ([]workitem.Record, error) {
	payload := WorkItemsBatchRequest{IDs: ids, Fields: fields, AsOf: asOf}
	raw, err := c.postRaw(ctx, "workitemsbatch", payload)
	if err != nil {
		return nil, err
	}

	items, err := decodeBatch(raw)
	if err != nil {
		return nil, workitem.NewAPIError("failed to decode work items", err)
	}

	c.logger.Debug().Int("requested", len(ids)).Int("returned", len(items)).Msg("work item batch read")

	records := make([]workitem.Record, 0, len(items))
	for _, item := range items {
		fieldsMap := item.Fields
		if fieldsMap == nil {
			fieldsMap = map[string]interface{}{}
		}
		records = append(records, workitem.Record{ID: item.ID, Fields: fieldsMap})
	}
	return records, nil
}

// Close releases idle connections held by the transport
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

func (c *Client) post(ctx context.Context, resource string, payload interface{}, out interface{}) error {
	raw, err := c.postRaw(ctx, resource, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return workitem.NewAPIError(fmt.Sprintf("failed to decode %s response", resource), err)
	}
	return nil
}

func (c *Client) postRaw(ctx context.Context, resource string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := c.resourceURL(resource)
	c.logger.Debug().Str("method", http.MethodPost).Str("url", endpoint).Msg("sending request")

	resp, err := c.rest.RequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, classifyError(resource, err)
	}
	defer resp.Body.Close()

	// An anonymous sign-in page comes back as 203 instead of 401
	if resp.StatusCode == http.StatusNonAuthoritativeInfo {
		return nil, workitem.NewPermissionError("tracker redirected to a sign-in page", fmt.Errorf("HTTP %d (%s)", resp.StatusCode, endpoint))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, workitem.NewNetworkError(fmt.Sprintf("failed to read %s response", resource), err)
	}
	return raw, nil
}

func (c *Client) resourceURL(resource string) string {
	params := url.Values{}
	params.Set("api-version", c.apiVersion)
	return c.urls.GetAPIURL(resource) + "?" + params.Encode()
}

func decodeBatch(raw []byte) ([]WorkItem, error) {
	var wrapped WorkItemsBatchResponse
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Value, nil
	}
	var items []WorkItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func classifyError(resource string, err error) error {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return workitem.NewPermissionError("tracker rejected the credentials", err)
		case http.StatusNotFound:
			return workitem.NewNotFoundError("collection or project", err)
		case http.StatusBadRequest:
			return workitem.NewValidationError(fmt.Sprintf("tracker rejected the %s request", resource), err)
		default:
			return workitem.NewAPIError(fmt.Sprintf("%s request failed", resource), err)
		}
	}
	return workitem.NewNetworkError(fmt.Sprintf("%s request failed", resource), err)
}

func basicAuthToken(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}
