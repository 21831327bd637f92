package models

import "errors"

// ToolParams is the closed set of tool invocation parameter shapes. One
// concrete type exists per tool family; the registry payload is the JSON form
// of the concrete type. Validate runs before dispatch so a malformed build
// never reaches the registry.
type ToolParams interface {
	isToolParams()
	Validate() error
}

// SearchDocumentsParams drives document search, scoped to a department
type SearchDocumentsParams struct {
	Query      string `json:"query"`
	Department string `json:"department"`
}

func (SearchDocumentsParams) isToolParams() {}

func (p SearchDocumentsParams) Validate() error {
	if p.Query == "" {
		return errors.New("search_documents requires a query")
	}
	if p.Department == "" {
		return errors.New("search_documents requires a department")
	}
	return nil
}

// QueryDatabaseParams carries a read-only SQL statement
type QueryDatabaseParams struct {
	Query string `json:"query"`
}

func (QueryDatabaseParams) isToolParams() {}

func (p QueryDatabaseParams) Validate() error {
	if p.Query == "" {
		return errors.New("query_database requires a query")
	}
	return nil
}

// SearchGitHubParams drives issue/PR/code search
type SearchGitHubParams struct {
	Query      string `json:"query"`
	SearchType string `json:"search_type"`
	State      string `json:"state,omitempty"`
}

func (SearchGitHubParams) isToolParams() {}

func (p SearchGitHubParams) Validate() error {
	if p.Query == "" {
		return errors.New("search_github requires a query")
	}
	if p.SearchType == "" {
		return errors.New("search_github requires a search_type")
	}
	return nil
}

// SearchJiraParams drives ticket search; Status nil means any status
type SearchJiraParams struct {
	Query  string  `json:"query"`
	Status *string `json:"status"`
}

func (SearchJiraParams) isToolParams() {}

func (p SearchJiraParams) Validate() error {
	if p.Query == "" {
		return errors.New("search_jira requires a query")
	}
	return nil
}

// GenericQueryParams is the shape for tools without a dedicated builder
type GenericQueryParams struct {
	Query string `json:"query"`
}

func (GenericQueryParams) isToolParams() {}

func (p GenericQueryParams) Validate() error {
	if p.Query == "" {
		return errors.New("tool call requires a query")
	}
	return nil
}
