package init

import (
	"context"

	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

// ConnectionChecker verifies new settings against the tracker
type ConnectionChecker struct {
	connector workitem.Connector
}

// NewConnectionChecker creates a new ConnectionChecker instance
func NewConnectionChecker(connector workitem.Connector) *ConnectionChecker {
	return &ConnectionChecker{
		connector: connector,
	}
}

// CountMatches runs query and returns how many work items it selects.
// Only identifiers are read so no field data is transferred.
func (c *ConnectionChecker) CountMatches(ctx context.Context, query string) (int, error) {
	session, err := c.connector.Connect(ctx)
	if err != nil {
		return 0, NewTrackerError("failed to connect", err)
	}
	defer session.Close()

	result, err := session.QueryByText(ctx, query)
	if err != nil {
		return 0, NewTrackerError("query failed", err)
	}

	return len(result.IDs), nil
}
