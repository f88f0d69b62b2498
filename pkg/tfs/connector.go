package tfs

import (
	"context"

	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

// Connector opens a fresh Client for every fetch
type Connector struct {
	opts Options
}

var _ workitem.Connector = (*Connector)(nil)

// NewConnector creates a connector from client options
func NewConnector(opts Options) *Connector {
	return &Connector{opts: opts}
}

// Connect implements workitem.Connector
func (c *Connector) Connect(ctx context.Context) (workitem.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, workitem.NewNetworkError("connection cancelled", err)
	}
	client, err := NewClient(c.opts)
	if err != nil {
		return nil, err
	}
	return client, nil
}
