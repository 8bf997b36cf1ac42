package client

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"dataimport/internal/model"

	"github.com/go-faster/errors"
)

// List returns the names of the files staged on the backend.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var names []string
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint("list"), nil, &names); err != nil {
		return nil, errors.Wrap(err, "list staged files")
	}
	return names, nil
}

// Upload stages a local file. Files over model.MaxUploadSize are rejected
// before anything is sent. The backend's confirmation text is returned.
func (c *Client) Upload(ctx context.Context, path string) (string, error) {
	info, err := model.InspectLocalFile(path)
	if err != nil {
		return "", errors.Wrap(err, "upload")
	}
	f, err := os.Open(info.Path)
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer f.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, info.Name))
		h.Set("Content-Type", info.ContentType)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("upload"), pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.do(req)
	if err != nil {
		return "", errors.Wrapf(err, "upload %s", info.Name)
	}
	defer func() { _ = resp.Body.Close() }()
	msg, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read upload response")
	}
	return strings.TrimSpace(string(msg)), nil
}

// Delete removes a staged file.
func (c *Client) Delete(ctx context.Context, name string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, c.endpoint("delete", name), nil)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return errors.Wrapf(err, "delete %s", name)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.Body.Close()
}

// Download streams a staged file into w and returns the number of bytes written.
func (c *Client) Download(ctx context.Context, name string, w io.Writer) (int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("download", name), nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "download %s", name)
	}
	defer func() { _ = resp.Body.Close() }()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.Wrapf(err, "download %s", name)
	}
	return n, nil
}
