package project

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yahsan2/srs-exporter/pkg/config"
)

// JoinURL joins base and path with exactly one separating slash
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// URLBuilder helps build tracker URLs for the configured collection and project
type URLBuilder struct {
	config *config.ConnectionConfig
}

// NewURLBuilder creates a new URL builder
func NewURLBuilder(cfg *config.ConnectionConfig) *URLBuilder {
	return &URLBuilder{
		config: cfg,
	}
}

// GetCollectionURL returns the endpoint joined with the collection name
func (b *URLBuilder) GetCollectionURL() string {
	if b.config.Endpoint == "" || b.config.Collection == "" {
		return ""
	}
	return JoinURL(b.config.Endpoint, b.config.Collection)
}

// GetProjectURL returns the collection URL joined with the escaped project name
func (b *URLBuilder) GetProjectURL() string {
	collectionURL := b.GetCollectionURL()
	if collectionURL == "" || b.config.Project == "" {
		return ""
	}
	return JoinURL(collectionURL, url.PathEscape(b.config.Project))
}

// GetAPIURL returns the URL of a work item tracking API resource in the project
func (b *URLBuilder) GetAPIURL(resource string) string {
	projectURL := b.GetProjectURL()
	if projectURL == "" {
		return ""
	}
	return JoinURL(projectURL, "_apis/wit/"+strings.TrimLeft(resource, "/"))
}

// GetWorkItemURL returns the web URL for editing a work item
func (b *URLBuilder) GetWorkItemURL(id int) string {
	projectURL := b.GetProjectURL()
	if projectURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/_workitems/edit/%d", projectURL, id)
}

// GetWorkItemsURL returns the web URL of the project's work items hub
func (b *URLBuilder) GetWorkItemsURL() string {
	projectURL := b.GetProjectURL()
	if projectURL == "" {
		return ""
	}
	return projectURL + "/_workitems"
}
