package client

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
)

// S3Request is the body of every S3 endpoint. Files and JobID are only sent
// when starting an import.
type S3Request struct {
	AccessKey string   `json:"accessKey"`
	SecretKey string   `json:"secretKey"`
	Bucket    string   `json:"bucket"`
	Path      string   `json:"path"`
	Region    string   `json:"region"`
	Files     []string `json:"files,omitempty"`
	JobID     string   `json:"jobId,omitempty"`
}

// S3Listing is returned by the list-s3 family of endpoints.
type S3Listing struct {
	Files              []string         `json:"files"`
	Folders            []string         `json:"folders"`
	FileSizes          map[string]int64 `json:"fileSizes"`
	FolderFileCounts   map[string]int   `json:"folderFileCounts"`
	RecursiveFileCount int              `json:"recursiveFileCount"`
	Error              string           `json:"error,omitempty"`
}

// ListS3 lists one level below req.Path.
func (c *Client) ListS3(ctx context.Context, req S3Request) (S3Listing, error) {
	return c.listS3(ctx, "list-s3", req)
}

// ListS3AllFiles lists every object below req.Path, recursively.
func (c *Client) ListS3AllFiles(ctx context.Context, req S3Request) (S3Listing, error) {
	return c.listS3(ctx, "list-s3-all-files", req)
}

// ListS3FilesInFolder lists the files directly inside req.Path.
func (c *Client) ListS3FilesInFolder(ctx context.Context, req S3Request) (S3Listing, error) {
	return c.listS3(ctx, "list-s3-files-in-folder", req)
}

func (c *Client) listS3(ctx context.Context, endpoint string, req S3Request) (S3Listing, error) {
	req.Files, req.JobID = nil, ""
	var out S3Listing
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(endpoint), req, &out); err != nil {
		return S3Listing{}, errors.Wrapf(err, "%s s3://%s/%s", endpoint, req.Bucket, req.Path)
	}
	if err := backendErr(out.Error); err != nil {
		return S3Listing{}, err
	}
	return out, nil
}
