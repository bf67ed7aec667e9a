package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docsift/docsift/internal/ai"
	"github.com/docsift/docsift/internal/common"
)

// Upload is a client file persisted to the artifact directory.
type Upload struct {
	Name      string // original file name as sent by the client
	MediaType string // declared content type, verbatim
	Size      int64
	Path      string // durable location; becomes the history record's filePath
}

// FileRegistrar registers a document with the understanding service and
// returns its external id. *ai.Client implements it.
type FileRegistrar interface {
	RegisterFile(ctx context.Context, name string, r io.Reader) (string, error)
}

// Input is the normalized form of one upload: its kind and the single
// content part that represents it.
type Input struct {
	Kind           Kind
	Part           ai.ContentPart
	ExternalFileID string // set for KindPDF
}

type Normalizer struct {
	dir       string
	registrar FileRegistrar
	log       *slog.Logger
}

func NewNormalizer(dir string, registrar FileRegistrar, log *slog.Logger) *Normalizer {
	return &Normalizer{dir: dir, registrar: registrar, log: log}
}

// Save streams the upload into durable storage under a collision-resistant
// name (ULID + original extension) before any classification happens.
func (n *Normalizer) Save(name, mediaType string, r io.Reader) (*Upload, error) {
	id, err := common.NewULID()
	if err != nil {
		return nil, common.InternalError("generate artifact name", err)
	}
	if err := os.MkdirAll(n.dir, 0o755); err != nil {
		return nil, common.PersistenceError("create upload directory", err)
	}

	path := filepath.Join(n.dir, id+strings.ToLower(filepath.Ext(name)))
	f, err := os.Create(path)
	if err != nil {
		return nil, common.PersistenceError("save upload", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, common.PersistenceError("save upload", err)
	}

	n.log.Debug("ingest.upload.saved", "name", name, "path", path, "bytes", size)
	return &Upload{Name: name, MediaType: mediaType, Size: size, Path: path}, nil
}

// sent instead of empty content when a DOCX has no visible text
const emptyDocxText = "[document contains no extractable text]"

const allowedTypes = "PDF, DOCX, TXT, JPG/PNG/WEBP/AVIF"

// Normalize classifies a saved upload and produces the content part
// representing it. The PDF path is the only one that talks to the
// service: the document has to be registered before it can be referenced.
func (n *Normalizer) Normalize(ctx context.Context, up *Upload) (*Input, error) {
	kind := Classify(up.Name, up.MediaType)
	switch kind {
	case KindPDF:
		f, err := os.Open(up.Path)
		if err != nil {
			return nil, common.InternalError("open upload", err)
		}
		defer f.Close()
		id, err := n.registrar.RegisterFile(ctx, up.Name, f)
		if err != nil {
			return nil, common.ServiceError("register file with service", err)
		}
		n.log.Info("ingest.pdf.registered", "name", up.Name, "external_id", id)
		return &Input{Kind: kind, Part: ai.FilePart(id), ExternalFileID: id}, nil

	case KindDocx:
		text, err := docxText(up.Path)
		if err != nil {
			return nil, common.ValidationError("could not extract text from " + up.Name + ": " + err.Error())
		}
		if strings.TrimSpace(text) == "" {
			text = emptyDocxText
		}
		return &Input{Kind: kind, Part: ai.TextPart(text)}, nil

	case KindText:
		b, err := os.ReadFile(up.Path)
		if err != nil {
			return nil, common.InternalError("read upload", err)
		}
		return &Input{Kind: kind, Part: ai.TextPart(string(b))}, nil

	case KindImage:
		dataURL, err := imageDataURL(up.Path, up.MediaType)
		if err != nil {
			return nil, common.ValidationError("could not decode image " + up.Name + ": " + err.Error())
		}
		return &Input{Kind: kind, Part: ai.ImagePart(dataURL)}, nil

	default:
		return nil, common.UnsupportedTypeError("unsupported file type for " + up.Name + "; allowed: " + allowedTypes)
	}
}
