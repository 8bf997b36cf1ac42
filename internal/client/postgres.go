package client

import (
	"context"
	"net/http"

	"dataimport/internal/model"

	"github.com/go-faster/errors"
)

// PostgresRequest is the body of every PostgreSQL endpoint.
type PostgresRequest struct {
	Host     string   `json:"host"`
	Port     int      `json:"port"`
	Database string   `json:"database"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Schema   string   `json:"schema,omitempty"`
	Table    string   `json:"table,omitempty"`
	Tables   []string `json:"tables,omitempty"`
	JobID    string   `json:"jobId,omitempty"`
}

// NewPostgresRequest fills a request from the connection form.
func NewPostgresRequest(o model.PostgresOptions) PostgresRequest {
	port := o.Port
	if port <= 0 {
		port = model.DefaultPostgresPort
	}
	return PostgresRequest{
		Host:     o.Host,
		Port:     port,
		Database: o.Database,
		Username: o.Username,
		Password: o.Password,
		Schema:   o.Schema,
	}
}

// PostgresListing holds tables and views as schema.name strings.
type PostgresListing struct {
	Schemas      []string `json:"schemas"`
	Files        []string `json:"files"`
	TotalObjects int      `json:"totalObjects"`
	Error        string   `json:"error,omitempty"`
}

// ListPostgres lists the objects of req.Schema, or of all schemas when empty.
func (c *Client) ListPostgres(ctx context.Context, req PostgresRequest) (PostgresListing, error) {
	return c.listPostgres(ctx, "list-postgres", req)
}

// ListPostgresAllObjects lists every table and view the user can see.
func (c *Client) ListPostgresAllObjects(ctx context.Context, req PostgresRequest) (PostgresListing, error) {
	return c.listPostgres(ctx, "list-postgres-all-objects", req)
}

func (c *Client) listPostgres(ctx context.Context, endpoint string, req PostgresRequest) (PostgresListing, error) {
	var out PostgresListing
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(endpoint), req, &out); err != nil {
		return PostgresListing{}, errors.Wrapf(err, "%s %s@%s/%s", endpoint, req.Username, req.Host, req.Database)
	}
	if err := backendErr(out.Error); err != nil {
		return PostgresListing{}, err
	}
	return out, nil
}

type previewResponse struct {
	Schema struct {
		Table   string         `json:"table"`
		Columns []model.Column `json:"columns"`
	} `json:"schema"`
	Sample struct {
		Rows []map[string]any `json:"rows"`
	} `json:"sample"`
	Error string `json:"error,omitempty"`
}

// PostgresTablePreview fetches the columns and a few sample rows of table,
// given as schema.name.
func (c *Client) PostgresTablePreview(ctx context.Context, req PostgresRequest, table string) (model.TablePreview, error) {
	req.Table = table
	var out previewResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint("postgres-table-preview"), req, &out); err != nil {
		return model.TablePreview{}, errors.Wrapf(err, "preview %s", table)
	}
	if err := backendErr(out.Error); err != nil {
		return model.TablePreview{}, err
	}
	name := out.Schema.Table
	if name == "" {
		name = table
	}
	return model.TablePreview{
		Table:   name,
		Columns: out.Schema.Columns,
		Rows:    out.Sample.Rows,
	}, nil
}
