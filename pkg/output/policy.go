package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yahsan2/srs-exporter/pkg/workitem"
)

// RankSentinel is printed when a work item has no stack rank
const RankSentinel = "9999999999"

// Policy decides which fields a listing fetches and how a record becomes a row
type Policy interface {
	Name() string
	// Fields are the field reference names requested from the tracker
	Fields() []string
	// Order is the query ordering the listing uses by default
	Order() workitem.Order
	Columns() []string
	Row(r workitem.Record) []string
}

// StatePolicy prints id, title and state
type StatePolicy struct{}

func (StatePolicy) Name() string { return "state" }

func (StatePolicy) Fields() []string {
	return []string{workitem.FieldID, workitem.FieldTitle, workitem.FieldState}
}

func (StatePolicy) Order() workitem.Order { return workitem.OrderByStateChanged }

func (StatePolicy) Columns() []string { return []string{"id", "title", "state"} }

func (StatePolicy) Row(r workitem.Record) []string {
	return []string{
		strconv.Itoa(r.ID),
		r.StringOr(workitem.FieldTitle, ""),
		r.StringOr(workitem.FieldState, ""),
	}
}

// RankPolicy prints id, title, a blank description column and the stack rank.
// A missing or empty rank is printed as RankSentinel.
type RankPolicy struct{}

func (RankPolicy) Name() string { return "rank" }

func (RankPolicy) Fields() []string {
	return []string{workitem.FieldID, workitem.FieldTitle, workitem.FieldDescription, workitem.FieldStackRank}
}

func (RankPolicy) Order() workitem.Order { return workitem.OrderByStackRank }

func (RankPolicy) Columns() []string { return []string{"id", "title", "description", "rank"} }

func (RankPolicy) Row(r workitem.Record) []string {
	return []string{
		strconv.Itoa(r.ID),
		r.StringOr(workitem.FieldTitle, ""),
		"",
		r.StringOr(workitem.FieldStackRank, RankSentinel),
	}
}

// DescriptionPolicy is RankPolicy with the description column filled in
type DescriptionPolicy struct{}

func (DescriptionPolicy) Name() string { return "description" }

func (DescriptionPolicy) Fields() []string { return RankPolicy{}.Fields() }

func (DescriptionPolicy) Order() workitem.Order { return workitem.OrderByStackRank }

func (DescriptionPolicy) Columns() []string { return RankPolicy{}.Columns() }

func (DescriptionPolicy) Row(r workitem.Record) []string {
	row := RankPolicy{}.Row(r)
	row[2] = r.StringOr(workitem.FieldDescription, "")
	return row
}

// Policies returns all listing policies in display order
func Policies() []Policy {
	return []Policy{StatePolicy{}, RankPolicy{}, DescriptionPolicy{}}
}

// ParsePolicy resolves a policy by name
func ParsePolicy(name string) (Policy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	names := make([]string, 0, 3)
	for _, p := range Policies() {
		if p.Name() == key {
			return p, nil
		}
		names = append(names, p.Name())
	}
	return nil, workitem.NewValidationError(fmt.Sprintf("unknown policy %q (expected %s)", name, strings.Join(names, ", ")), nil)
}
