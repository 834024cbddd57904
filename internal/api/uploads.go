package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/JonMunkholm/smartmart/internal/core"
	"github.com/JonMunkholm/smartmart/internal/logging"
)

// UploadField is the multipart field the import endpoint reads.
const UploadField = "file"

// UploadCSV forwards a CSV file to the backend importer for kind.
// The caller is expected to have classified the file first.
func (c *Client) UploadCSV(ctx context.Context, kind core.Kind, filename string, r io.Reader) (*ImportResult, error) {
	if _, ok := core.Lookup(kind); !ok {
		return nil, fmt.Errorf("upload %q: %w", kind, core.ErrUnknownKind)
	}
	if filename == "" {
		filename = string(kind) + ".csv"
	}

	counter := core.NewCountingReader(r)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(UploadField, filepath.Base(filename))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, counter); err != nil {
		return nil, fmt.Errorf("copy upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	path := "/upload/csv/" + string(kind)
	req, err := c.newRequest(ctx, http.MethodPost, path, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", kind, err)
	}
	defer resp.Body.Close()

	var out ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode import result: %w", err)
	}

	logging.FromContext(ctx).Info("csv forwarded",
		"kind", kind,
		"file", filename,
		"bytes", counter.BytesRead,
		"inserted", out.Inserted,
	)
	return &out, nil
}
