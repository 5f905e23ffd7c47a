package rmcloud

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

const (
	docsPath          = "/document-storage/json/2/docs"
	uploadRequestPath = "/document-storage/json/2/upload/request"
	updateStatusPath  = "/document-storage/json/2/upload/update-status"
	deletePath        = "/document-storage/json/2/delete"
)

// Docs lists all documents, or fetches the one selected by opts. A nil opts
// applies no filter.
//
// The response is decoded but not validated.
func (c *Client) Docs(ctx context.Context, host, token string, opts *DocsOptions) ([]Document, error) {
	endpoint := host + docsPath
	if q := docsQuery(opts); q != "" {
		endpoint += "?" + q
	}

	resp, err := c.do(ctx, request{
		operation: OpDocs,
		method:    http.MethodGet,
		url:       endpoint,
		token:     token,
	})
	if err != nil {
		return nil, err
	}

	var docs []Document
	if err := decodeJSON(resp, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func docsQuery(opts *DocsOptions) string {
	if opts == nil {
		return ""
	}

	params := map[string]any{"withBlob": opts.WithBlob}
	if opts.ID != "" {
		params["doc"] = opts.ID
	}
	return QueryString(params)
}

// UploadRequest reserves a new document and returns the URL its blob must
// be PUT to. The service must accept exactly one item.
func (c *Client) UploadRequest(ctx context.Context, host, token string) (UploadSlot, error) {
	docID := c.newID()

	resp, err := c.do(ctx, request{
		operation: OpUploadRequest,
		method:    http.MethodPut,
		url:       host + uploadRequestPath,
		token:     token,
		body: []uploadRequestItem{{
			ID:      docID,
			Type:    DocumentType,
			Version: 1,
		}},
	})
	if err != nil {
		return UploadSlot{}, err
	}

	var results []uploadRequestResult
	if err := decodeJSON(resp, &results); err != nil {
		return UploadSlot{}, err
	}

	urls := make([]string, 0, len(results))
	for _, r := range results {
		if !r.Success {
			return UploadSlot{}, ErrUploadRequestFailed.WithDetails(r.Message)
		}
		urls = append(urls, r.BlobURLPut)
	}

	if len(urls) != 1 {
		return UploadSlot{}, ErrUnexpectedUploadURLCount.WithDetails(fmt.Sprintf("got %d", len(urls)))
	}

	return UploadSlot{DocID: docID, UploadURL: urls[0]}, nil
}

// UploadBlob PUTs the document content to an upload slot URL. size is the
// length of body, or -1 if unknown, in which case the body is sent chunked.
func (c *Client) UploadBlob(ctx context.Context, uploadURL string, body io.Reader, size int64) error {
	resp, err := c.do(ctx, request{
		operation: OpUploadBlob,
		method:    http.MethodPut,
		url:       uploadURL,
		raw:       body,
		size:      size,
	})
	if err != nil {
		return err
	}

	text, err := readText(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ErrBlobUploadFailed.WithStatus(resp.StatusCode).WithDetails(snippet(text))
	}
	return nil
}

// UpdateStatus writes a document's metadata. The response is returned as
// is; the caller must close its body.
func (c *Client) UpdateStatus(ctx context.Context, host, token string, metadata DocumentMetadata) (*http.Response, error) {
	return c.do(ctx, request{
		operation: OpUpdateStatus,
		method:    http.MethodPut,
		url:       host + updateStatusPath,
		token:     token,
		body:      []documentStatus{newDocumentStatus(metadata)},
	})
}

// DeleteItem deletes a document at the given version. The response is
// returned as is; the caller must close its body.
func (c *Client) DeleteItem(ctx context.Context, host, token, id string, version int) (*http.Response, error) {
	return c.do(ctx, request{
		operation: OpDeleteItem,
		method:    http.MethodPut,
		url:       host + deletePath,
		token:     token,
		body:      []deleteItem{{ID: id, Version: version}},
	})
}
