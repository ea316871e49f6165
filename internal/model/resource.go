package model

import "path/filepath"

// AttachmentKind tells whether an attachment still needs uploading.
type AttachmentKind string

const (
	AttachmentNone   AttachmentKind = ""
	AttachmentLocal  AttachmentKind = "local"
	AttachmentRemote AttachmentKind = "remote"
)

// Attachment is the file slot of a resource: nothing, a staged local file
// that has not been uploaded yet, or a reference to an already stored file.
type Attachment struct {
	Kind AttachmentKind `json:"kind,omitempty"`
	Path string         `json:"path,omitempty"`
	URL  string         `json:"url,omitempty"`
}

// LocalFile stages the file at path for upload.
func LocalFile(path string) Attachment {
	return Attachment{Kind: AttachmentLocal, Path: path}
}

// RemoteRef points at a file the server already stores.
func RemoteRef(url string) Attachment {
	return Attachment{Kind: AttachmentRemote, URL: url}
}

func (a Attachment) IsLocal() bool  { return a.Kind == AttachmentLocal }
func (a Attachment) IsRemote() bool { return a.Kind == AttachmentRemote }

func (a Attachment) String() string {
	switch a.Kind {
	case AttachmentLocal:
		return filepath.Base(a.Path) + " (pending upload)"
	case AttachmentRemote:
		if a.URL == "" {
			return "uploaded"
		}
		return a.URL
	default:
		return "-"
	}
}

// Resource is an editable profile sub-resource (an education entry, a
// qualification, or the owner profile itself). An empty ID means the entry
// has not been created on the server yet.
type Resource struct {
	Key        string            `json:"key"`
	ID         ID                `json:"id,omitempty"`
	Fields     map[string]string `json:"fields"`
	Attachment Attachment        `json:"attachment"`
}

// HasID reports whether the resource exists server-side.
func (r Resource) HasID() bool { return r.ID != "" }

// Clone returns a deep copy.
func (r Resource) Clone() Resource {
	out := r
	out.Fields = make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	return out
}

// Field returns the named field or "".
func (r Resource) Field(name string) string {
	return r.Fields[name]
}
