package client

import (
	"context"
	"net/http"

	"dataimport/internal/model"

	"github.com/go-faster/errors"
)

type localImportRequest struct {
	Files []string `json:"files"`
	JobID string   `json:"jobId"`
}

type startResponse struct {
	JobID string `json:"jobId"`
	Error string `json:"error,omitempty"`
}

// StartLocalImport starts importing staged files under jobID. The backend may
// assign its own id; the one to poll is returned.
func (c *Client) StartLocalImport(ctx context.Context, files []string, jobID string) (string, error) {
	return c.start(ctx, "load-local-progress", localImportRequest{Files: files, JobID: jobID}, jobID)
}

// StartS3Import starts importing req.Files from S3.
func (c *Client) StartS3Import(ctx context.Context, req S3Request, files []string, jobID string) (string, error) {
	req.Files, req.JobID = files, jobID
	return c.start(ctx, "load-s3-progress", req, jobID)
}

// StartPostgresImport starts importing tables given as schema.name.
func (c *Client) StartPostgresImport(ctx context.Context, req PostgresRequest, tables []string, jobID string) (string, error) {
	req.Tables, req.JobID = tables, jobID
	return c.start(ctx, "load-postgres-progress", req, jobID)
}

func (c *Client) start(ctx context.Context, endpoint string, body any, jobID string) (string, error) {
	var out startResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(endpoint), body, &out); err != nil {
		return "", errors.Wrap(err, "start import")
	}
	if err := backendErr(out.Error); err != nil {
		return "", err
	}
	if out.JobID != "" {
		return out.JobID, nil
	}
	return jobID, nil
}

// ImportProgress fetches the state of a running import.
func (c *Client) ImportProgress(ctx context.Context, jobID string) (model.Progress, error) {
	var p model.Progress
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("import-progress", jobID), nil, &p); err != nil {
		return model.Progress{}, errors.Wrapf(err, "progress of %s", jobID)
	}
	if p.JobID == "" {
		p.JobID = jobID
	}
	return p, nil
}
