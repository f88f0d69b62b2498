package args

import (
	"github.com/spf13/cobra"

	"github.com/yahsan2/srs-exporter/pkg/output"
	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

// QueryFlags contains flag names used by listing commands
type QueryFlags struct {
	Order  string
	Policy string
	Output string
	Type   string
}

// DefaultFlags returns the default flag names
func DefaultFlags() *QueryFlags {
	return &QueryFlags{
		Order:  "order",
		Policy: "policy",
		Output: "output",
		Type:   "type",
	}
}

// QueryOptions is the parsed query shape of a listing
type QueryOptions struct {
	Order  workitem.Order
	Policy output.Policy
	Format output.FormatType
	// WorkItemType is empty when the flag was not given
	WorkItemType string
}

// AddQueryFlags adds the query shape flags to the command
func AddQueryFlags(cmd *cobra.Command, flags *QueryFlags) {
	if flags == nil {
		flags = DefaultFlags()
	}

	cmd.Flags().StringP(flags.Policy, "p", "rank", "Listing policy: {state|rank|description}")
	cmd.Flags().String(flags.Order, "", "Query order: {state|rank} (default: the policy's order)")
	cmd.Flags().StringP(flags.Output, "o", "table", "Output format: {table|json|csv}")
	cmd.Flags().StringP(flags.Type, "t", "", "Work item type to select (default: query.work_item_type)")
}

// ParseQueryFlags extracts the query shape from command flags
func ParseQueryFlags(cmd *cobra.Command, flags *QueryFlags) (*QueryOptions, error) {
	if flags == nil {
		flags = DefaultFlags()
	}

	opts := &QueryOptions{}

	policyName, err := cmd.Flags().GetString(flags.Policy)
	if err != nil {
		return nil, err
	}
	if opts.Policy, err = output.ParsePolicy(policyName); err != nil {
		return nil, err
	}

	orderName, err := cmd.Flags().GetString(flags.Order)
	if err != nil {
		return nil, err
	}
	if orderName == "" {
		opts.Order = opts.Policy.Order()
	} else if opts.Order, err = workitem.ParseOrder(orderName); err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString(flags.Output)
	if err != nil {
		return nil, err
	}
	if opts.Format, err = output.ParseFormat(format); err != nil {
		return nil, err
	}

	if opts.WorkItemType, err = cmd.Flags().GetString(flags.Type); err != nil {
		return nil, err
	}

	return opts, nil
}
