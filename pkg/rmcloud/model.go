package rmcloud

import "time"

// DocumentKind is the upstream "Type" of an item in the document store.
type DocumentKind string

const (
	// DocumentType is a notebook, PDF or EPUB.
	DocumentType DocumentKind = "DocumentType"
	// CollectionType is a folder.
	CollectionType DocumentKind = "CollectionType"
)

// Document is one record returned by the docs endpoint.
type Document struct {
	ID                string       `json:"ID"`
	Version           int          `json:"Version"`
	Message           string       `json:"Message"`
	Success           bool         `json:"Success"`
	BlobURLGet        string       `json:"BlobURLGet"`
	BlobURLGetExpires string       `json:"BlobURLGetExpires"`
	ModifiedClient    string       `json:"ModifiedClient"`
	Type              DocumentKind `json:"Type"`
	VisibleName       string       `json:"VissibleName"`
	CurrentPage       int          `json:"CurrentPage"`
	Bookmarked        bool         `json:"Bookmarked"`
	Parent            string       `json:"Parent"`
}

// DocsOptions narrows a Docs call to a single document.
type DocsOptions struct {
	ID       string
	WithBlob bool
}

// DocumentMetadata is the caller's view of a document's status. Parent is
// empty for items at the root.
type DocumentMetadata struct {
	ID           string
	Version      int
	DateModified time.Time
	Type         DocumentKind
	VisibleName  string
	CurrentPage  int
	Bookmarked   bool
	Parent       string
}

// UploadSlot is a newly reserved document and the one-time URL its blob
// must be PUT to.
type UploadSlot struct {
	DocID     string `json:"doc_id"`
	UploadURL string `json:"upload_url"`
}

// documentStatus is the wire form of DocumentMetadata. The upstream spells
// VissibleName with a double s.
type documentStatus struct {
	ID             string       `json:"ID"`
	Version        int          `json:"Version"`
	ModifiedClient string       `json:"ModifiedClient"`
	Type           DocumentKind `json:"Type"`
	VissibleName   string       `json:"VissibleName"`
	CurrentPage    int          `json:"CurrentPage"`
	Bookmarked     bool         `json:"Bookmarked"`
	Parent         string       `json:"Parent"`
}

func newDocumentStatus(m DocumentMetadata) documentStatus {
	return documentStatus{
		ID:             m.ID,
		Version:        m.Version,
		ModifiedClient: formatModified(m.DateModified),
		Type:           m.Type,
		VissibleName:   m.VisibleName,
		CurrentPage:    m.CurrentPage,
		Bookmarked:     m.Bookmarked,
		Parent:         m.Parent,
	}
}

func formatModified(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

type uploadRequestItem struct {
	ID      string       `json:"ID"`
	Type    DocumentKind `json:"Type"`
	Version int          `json:"Version"`
}

type uploadRequestResult struct {
	ID                string `json:"ID"`
	Success           bool   `json:"Success"`
	Message           string `json:"Message"`
	BlobURLPut        string `json:"BlobURLPut"`
	BlobURLPutExpires string `json:"BlobURLPutExpires"`
}

type deleteItem struct {
	ID      string `json:"ID"`
	Version int    `json:"Version"`
}
