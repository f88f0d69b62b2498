package workitem

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultWorkItemType is the work item type selected when none is configured
const DefaultWorkItemType = "Epic"

// OrderClause is one column of a WIQL ORDER BY clause
type OrderClause struct {
	Field      string
	Descending bool
}

// Order is a named ordering used by a call site
type Order struct {
	Name    string
	Clauses []OrderClause
}

var (
	// OrderByStateChanged lists items by state, most recently changed first
	OrderByStateChanged = Order{
		Name: "state",
		Clauses: []OrderClause{
			{Field: "State"},
			{Field: "Changed Date", Descending: true},
		},
	}

	// OrderByStackRank lists items by backlog rank, highest priority first
	OrderByStackRank = Order{
		Name: "rank",
		Clauses: []OrderClause{
			{Field: FieldStackRank},
		},
	}
)

// Orders returns the supported orderings keyed by name
func Orders() map[string]Order {
	return map[string]Order{
		OrderByStateChanged.Name: OrderByStateChanged,
		OrderByStackRank.Name:    OrderByStackRank,
	}
}

// ParseOrder resolves an ordering by name
func ParseOrder(name string) (Order, error) {
	order, ok := Orders()[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Order{}, NewValidationError(fmt.Sprintf("unknown order %q (expected state or rank)", name), nil)
	}
	return order, nil
}

// QueryBuilder builds a WIQL query that selects only work item identifiers.
// Only the identifier column is selected since list queries return id and url.
type QueryBuilder struct {
	WorkItemType string
	Project      string
	Order        Order
}

// NewQueryBuilder creates a builder for the given project and ordering
func NewQueryBuilder(project string, order Order) *QueryBuilder {
	return &QueryBuilder{
		WorkItemType: DefaultWorkItemType,
		Project:      project,
		Order:        order,
	}
}

// Build renders the WIQL text. The project and work item type are quoted as
// string literals and rejected if they contain control characters.
func (b *QueryBuilder) Build() (string, error) {
	if strings.TrimSpace(b.Project) == "" {
		return "", NewValidationError("project name is required", nil)
	}
	witType := b.WorkItemType
	if witType == "" {
		witType = DefaultWorkItemType
	}

	project, err := QuoteLiteral(b.Project)
	if err != nil {
		return "", NewValidationError("invalid project name", err)
	}
	typeLiteral, err := QuoteLiteral(witType)
	if err != nil {
		return "", NewValidationError("invalid work item type", err)
	}

	var sb strings.Builder
	sb.WriteString("Select [System.Id] From WorkItems")
	fmt.Fprintf(&sb, " Where [System.WorkItemType] = %s", typeLiteral)
	fmt.Fprintf(&sb, " And [System.TeamProject] = %s", project)

	if len(b.Order.Clauses) > 0 {
		parts := make([]string, 0, len(b.Order.Clauses))
		for _, c := range b.Order.Clauses {
			dir := "Asc"
			if c.Descending {
				dir = "Desc"
			}
			parts = append(parts, fmt.Sprintf("[%s] %s", c.Field, dir))
		}
		sb.WriteString(" Order By ")
		sb.WriteString(strings.Join(parts, ", "))
	}

	return sb.String(), nil
}

// QuoteLiteral renders s as a WIQL string literal, doubling embedded single
// quotes. Control characters are not representable and yield an error.
func QuoteLiteral(s string) (string, error) {
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("control character %U not allowed in %q", r, s)
		}
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'", nil
}
