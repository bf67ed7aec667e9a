package history

import (
	"encoding/json"
	"time"
)

const (
	TypeChat = "chat"
	TypeFile = "file"

	StatusSuccess = "success"
	StatusError   = "error"
)

// ChatPayload carries the fields that only exist for chat requests.
type ChatPayload struct {
	Response string
}

// FilePayload carries the fields that only exist for file requests.
// FilePath is the on-disk location of the original upload; once the
// record is inserted the store owns that file and removes it when the
// record is deleted.
type FilePayload struct {
	ResultJSON     string
	CommandName    string
	FileName       string
	FileMime       string
	FileSize       int64
	FilePath       string
	ExternalFileID string
}

// Record is one durable log entry of a completed request, success or
// failure. RequestType is the discriminant: exactly one of Chat or
// File is non-nil and matches it.
type Record struct {
	ID          uint64
	CreatedAt   time.Time
	RequestType string
	Prompt      string
	Status      string
	Error       string // set iff Status == StatusError
	DurationMs  int64

	Chat *ChatPayload
	File *FilePayload
}

// recordJSON is the flat wire shape; variant fields are null when they
// do not apply to the record's request type.
type recordJSON struct {
	ID          uint64  `json:"id"`
	CreatedAt   string  `json:"createdAt"`
	RequestType string  `json:"requestType"`
	Prompt      string  `json:"prompt"`
	Status      string  `json:"status"`
	Error       *string `json:"error"`
	DurationMs  int64   `json:"durationMs"`

	Response       *string `json:"response"`
	ResultJSON     *string `json:"resultJson"`
	CommandName    *string `json:"commandName"`
	FileName       *string `json:"fileName"`
	FileMime       *string `json:"fileMime"`
	FileSize       *int64  `json:"fileSize"`
	FilePath       *string `json:"filePath"`
	ExternalFileID *string `json:"externalFileId"`
}

func (r Record) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		ID:          r.ID,
		CreatedAt:   r.CreatedAt.UTC().Format(time.RFC3339),
		RequestType: r.RequestType,
		Prompt:      r.Prompt,
		Status:      r.Status,
		Error:       optStr(r.Error),
		DurationMs:  r.DurationMs,
	}
	if r.Chat != nil {
		out.Response = optStr(r.Chat.Response)
	}
	if f := r.File; f != nil {
		out.ResultJSON = optStr(f.ResultJSON)
		out.CommandName = optStr(f.CommandName)
		out.FileName = optStr(f.FileName)
		out.FileMime = optStr(f.FileMime)
		size := f.FileSize
		out.FileSize = &size
		out.FilePath = optStr(f.FilePath)
		out.ExternalFileID = optStr(f.ExternalFileID)
	}
	return json.Marshal(out)
}

func optStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
