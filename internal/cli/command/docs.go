package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/yndnr/rmcloud-go/internal/cli/connection"
	"github.com/yndnr/rmcloud-go/internal/cli/output"
	"github.com/yndnr/rmcloud-go/pkg/rmcloud"
)

// DocsCommand returns the docs subcommand group.
func DocsCommand() *cli.Command {
	return &cli.Command{
		Name:    "docs",
		Aliases: []string{"doc"},
		Usage:   "Manage documents in the cloud",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List documents and folders",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Only the document with this ID",
					},
					&cli.BoolFlag{
						Name:  "blob",
						Usage: "Include download URLs",
					},
				},
				Action: docsList,
			},
			{
				Name:   "upload-request",
				Usage:  "Reserve a document ID and upload URL",
				Action: docsUploadRequest,
			},
			{
				Name:      "upload",
				Usage:     "Upload a document archive and make it visible",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "name",
						Usage: "Visible name (default: file name without extension)",
					},
					&cli.StringFlag{
						Name:  "parent",
						Usage: "ID of the destination folder (default: root)",
					},
				},
				Action: docsUpload,
			},
			{
				Name:      "update",
				Usage:     "Update a document's metadata",
				ArgsUsage: "ID",
				Description: "Fields whose flags are not given keep their stored value.\n" +
					"Use --bookmarked=false to clear the bookmark.",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "version",
						Usage:    "New version, normally the current version plus one",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Visible name",
					},
					&cli.StringFlag{
						Name:  "parent",
						Usage: "ID of the parent folder (empty: root)",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "DocumentType or CollectionType",
					},
					&cli.IntFlag{
						Name:  "page",
						Usage: "Current page",
					},
					&cli.BoolFlag{
						Name:  "bookmarked",
						Usage: "Mark as bookmarked",
					},
				},
				Action: docsUpdate,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Delete a document",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "version",
						Usage:    "Current version of the document",
						Required: true,
					},
				},
				Action: docsDelete,
			},
		},
	}
}

// documentView is how a document is shown to the user.
type documentView struct {
	ID          string `json:"id" yaml:"id" table:"ID"`
	Name        string `json:"name" yaml:"name" table:"NAME"`
	Type        string `json:"type" yaml:"type" table:"TYPE"`
	Version     int    `json:"version" yaml:"version" table:"VERSION"`
	Parent      string `json:"parent" yaml:"parent" table:"PARENT"`
	Modified    string `json:"modified" yaml:"modified" table:"MODIFIED,wide"`
	CurrentPage int    `json:"current_page" yaml:"current_page" table:"PAGE,wide"`
	Bookmarked  bool   `json:"bookmarked" yaml:"bookmarked" table:"BOOKMARKED,wide"`
	BlobURL     string `json:"blob_url,omitempty" yaml:"blob_url,omitempty" table:"-"`
}

func newDocumentView(d rmcloud.Document) documentView {
	return documentView{
		ID:          d.ID,
		Name:        d.VisibleName,
		Type:        string(d.Type),
		Version:     d.Version,
		Parent:      d.Parent,
		Modified:    d.ModifiedClient,
		CurrentPage: d.CurrentPage,
		Bookmarked:  d.Bookmarked,
		BlobURL:     d.BlobURLGet,
	}
}

// slotView is how an upload slot is shown to the user.
type slotView struct {
	DocID     string `json:"doc_id" yaml:"doc_id" table:"DOC_ID"`
	UploadURL string `json:"upload_url" yaml:"upload_url" table:"UPLOAD_URL"`
}

func docsList(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	sess, err := inv.conn.Connect(ctx)
	if err != nil {
		return err
	}

	var opts *rmcloud.DocsOptions
	if c.IsSet("id") || c.IsSet("blob") {
		opts = &rmcloud.DocsOptions{ID: c.String("id"), WithBlob: c.Bool("blob")}
	}

	docs, err := inv.client.Docs(ctx, sess.Host, sess.UserToken, opts)
	if err != nil {
		return err
	}

	views := make([]documentView, 0, len(docs))
	for _, d := range docs {
		views = append(views, newDocumentView(d))
	}
	return printResult(c, inv, views)
}

func docsUploadRequest(c *cli.Context) error {
	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	sess, err := inv.conn.Connect(ctx)
	if err != nil {
		return err
	}

	slot, err := inv.client.UploadRequest(ctx, sess.Host, sess.UserToken)
	if err != nil {
		return err
	}
	return printResult(c, inv, slotView{DocID: slot.DocID, UploadURL: slot.UploadURL})
}

// docsUpload runs the three-step upload: reserve a slot, PUT the archive,
// then publish the metadata at version 1.
func docsUpload(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return errors.New("file required")
	}

	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	sess, err := inv.conn.Connect(ctx)
	if err != nil {
		return err
	}

	slot, err := inv.client.UploadRequest(ctx, sess.Host, sess.UserToken)
	if err != nil {
		return err
	}

	var body io.Reader = f
	var bar *output.ProgressBar
	if isTerminal(c.App.ErrWriter) {
		bar = output.NewProgressBar(c.App.ErrWriter, "Uploading", info.Size())
		body = bar.Reader(f)
	}

	err = inv.client.UploadBlob(ctx, slot.UploadURL, body, info.Size())
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	name := c.String("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	metadata := rmcloud.DocumentMetadata{
		ID:           slot.DocID,
		Version:      1,
		DateModified: time.Now(),
		Type:         rmcloud.DocumentType,
		VisibleName:  name,
		Parent:       c.String("parent"),
	}
	resp, err := inv.client.UpdateStatus(ctx, sess.Host, sess.UserToken, metadata)
	if err != nil {
		return err
	}
	if err := checkItemResponse(resp); err != nil {
		return fmt.Errorf("publish %s: %w", slot.DocID, err)
	}

	return printResult(c, inv, documentView{
		ID:      slot.DocID,
		Name:    name,
		Type:    string(rmcloud.DocumentType),
		Version: 1,
		Parent:  metadata.Parent,
	})
}

func docsUpdate(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errors.New("document ID required")
	}

	if c.IsSet("type") {
		kind := rmcloud.DocumentKind(c.String("type"))
		if kind != rmcloud.DocumentType && kind != rmcloud.CollectionType {
			return fmt.Errorf("unknown type %q", kind)
		}
	}

	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	sess, err := inv.conn.Connect(ctx)
	if err != nil {
		return err
	}

	current, err := fetchDocument(ctx, inv, sess, id)
	if err != nil {
		return err
	}

	metadata := rmcloud.DocumentMetadata{
		ID:           id,
		Version:      c.Int("version"),
		DateModified: time.Now(),
		Type:         current.Type,
		VisibleName:  current.VisibleName,
		CurrentPage:  current.CurrentPage,
		Bookmarked:   current.Bookmarked,
		Parent:       current.Parent,
	}
	if c.IsSet("type") {
		metadata.Type = rmcloud.DocumentKind(c.String("type"))
	}
	if c.IsSet("name") {
		metadata.VisibleName = c.String("name")
	}
	if c.IsSet("page") {
		metadata.CurrentPage = c.Int("page")
	}
	if c.IsSet("bookmarked") {
		metadata.Bookmarked = c.Bool("bookmarked")
	}
	if c.IsSet("parent") {
		metadata.Parent = c.String("parent")
	}

	resp, err := inv.client.UpdateStatus(ctx, sess.Host, sess.UserToken, metadata)
	if err != nil {
		return err
	}
	if err := checkItemResponse(resp); err != nil {
		return fmt.Errorf("update %s: %w", id, err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Document %s updated to version %d\n", id, c.Int("version"))
	return nil
}

// fetchDocument returns the stored record of id.
func fetchDocument(ctx context.Context, inv *invocation, sess *connection.Session, id string) (rmcloud.Document, error) {
	docs, err := inv.client.Docs(ctx, sess.Host, sess.UserToken, &rmcloud.DocsOptions{ID: id})
	if err != nil {
		return rmcloud.Document{}, fmt.Errorf("fetch %s: %w", id, err)
	}

	for _, d := range docs {
		if d.ID != id {
			continue
		}
		if !d.Success {
			return rmcloud.Document{}, fmt.Errorf("fetch %s: %s", id, d.Message)
		}
		return d, nil
	}
	return rmcloud.Document{}, fmt.Errorf("document %s not found", id)
}

func docsDelete(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return errors.New("document ID required")
	}

	inv, err := requireInvocation(c)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(c, inv)
	defer cancel()

	sess, err := inv.conn.Connect(ctx)
	if err != nil {
		return err
	}

	resp, err := inv.client.DeleteItem(ctx, sess.Host, sess.UserToken, id, c.Int("version"))
	if err != nil {
		return err
	}
	if err := checkItemResponse(resp); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}

	fmt.Fprintf(c.App.ErrWriter, "Document %s deleted\n", id)
	return nil
}

// itemResult is one entry of the array the update-status and delete
// endpoints answer with.
type itemResult struct {
	ID      string `json:"ID"`
	Success bool   `json:"Success"`
	Message string `json:"Message"`
}

// checkItemResponse closes resp and reports a non-2xx status or any item
// the service did not accept.
func checkItemResponse(resp *http.Response) error {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var results []itemResult
	if err := json.Unmarshal(data, &results); err != nil {
		// A 2xx body without item results counts as success.
		return nil
	}
	for _, r := range results {
		if !r.Success {
			return fmt.Errorf("rejected: %s", r.Message)
		}
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
