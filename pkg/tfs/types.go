package tfs

// WiqlRequest is the body of a WIQL query
type WiqlRequest struct {
	Query string `json:"query"`
}

// WorkItemReference is an entry of a flat query result
type WorkItemReference struct {
	ID  int    `json:"id"`
	URL string `json:"url"`
}

// WiqlResponse is the result of a WIQL query
type WiqlResponse struct {
	QueryType       string              `json:"queryType"`
	QueryResultType string              `json:"queryResultType"`
	AsOf            string              `json:"asOf"`
	WorkItems       []WorkItemReference `json:"workItems"`
}

// WorkItemsBatchRequest is the body of a work items batch read
type WorkItemsBatchRequest struct {
	IDs    []int    `json:"ids"`
	Fields []string `json:"fields,omitempty"`
	AsOf   string   `json:"asOf,omitempty"`
}

// WorkItem is a work item as returned by the batch endpoint
type WorkItem struct {
	ID     int                    `json:"id"`
	Rev    int                    `json:"rev"`
	Fields map[string]interface{} `json:"fields"`
	URL    string                 `json:"url"`
}

// WorkItemsBatchResponse wraps the batch result
type WorkItemsBatchResponse struct {
	Count int        `json:"count"`
	Value []WorkItem `json:"value"`
}
