package extract

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/docsift/docsift/internal/ai"
	"github.com/docsift/docsift/internal/command"
	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/history"
	"github.com/docsift/docsift/internal/ingest"
)

// Service runs the request pipeline end to end: normalize the input,
// resolve the command, call the model once, persist exactly one history
// record for the outcome.
type Service struct {
	resolver   *command.Resolver
	normalizer *ingest.Normalizer
	invoker    *Invoker
	store      history.Store
	log        *slog.Logger
}

func NewService(resolver *command.Resolver, normalizer *ingest.Normalizer, invoker *Invoker, store history.Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		resolver:   resolver,
		normalizer: normalizer,
		invoker:    invoker,
		store:      store,
		log:        log,
	}
}

// ChatResult is the outcome of a chat request. When Chat also returns an
// error, Item still points at the failure record if one was written.
type ChatResult struct {
	Output string
	Item   *history.Record
}

// FileResult is the outcome of a file request. ResultJSON is a serialized
// JSON document. The same Item convention as ChatResult applies.
type FileResult struct {
	ResultJSON string
	Item       *history.Record
}

// FileRequest is one uploaded file plus the command to run against it.
type FileRequest struct {
	Command   string
	FileName  string
	MediaType string
	Content   io.Reader
}

// Chat answers a free-text prompt and records the outcome.
func (s *Service) Chat(ctx context.Context, prompt string) (*ChatResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, common.ValidationError("prompt must not be empty")
	}

	started := time.Now()
	out, invokeErr := s.invoker.Chat(ctx, prompt)

	rec := &history.Record{
		CreatedAt:   started,
		RequestType: history.TypeChat,
		Prompt:      prompt,
		Status:      history.StatusSuccess,
		DurationMs:  time.Since(started).Milliseconds(),
		Chat:        &history.ChatPayload{Response: out},
	}
	if invokeErr != nil {
		rec.Status = history.StatusError
		rec.Error = common.Message(invokeErr)
		rec.Chat = &history.ChatPayload{}
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		s.log.Error("history.insert_failed", "request_type", history.TypeChat, "error", err.Error())
		if invokeErr != nil {
			return nil, invokeErr
		}
		return &ChatResult{Output: out}, common.PersistenceError("record chat request", err)
	}

	if invokeErr != nil {
		return &ChatResult{Item: rec}, invokeErr
	}
	return &ChatResult{Output: out, Item: rec}, nil
}

// AnalyzeFile runs one uploaded file through the extraction pipeline.
//
// Failures before the upload is saved (bad command spec) or for inputs we
// refuse outright (unsupported type) leave no history record; everything
// after that point is recorded, success or failure.
func (s *Service) AnalyzeFile(ctx context.Context, req FileRequest) (*FileResult, error) {
	createdAt := time.Now()

	spec, err := s.resolver.Resolve(req.Command)
	if err != nil {
		return nil, err
	}

	up, err := s.normalizer.Save(req.FileName, req.MediaType, req.Content)
	if err != nil {
		return nil, err
	}

	invokeStart := time.Now()
	var (
		resultJSON string
		externalID string
	)
	in, invokeErr := s.normalizer.Normalize(ctx, up)
	if invokeErr == nil {
		externalID = in.ExternalFileID
		resultJSON, invokeErr = s.invoker.Extract(ctx, []ai.ContentPart{in.Part}, spec)
	}
	durationMs := time.Since(invokeStart).Milliseconds()

	if common.IsKind(invokeErr, common.KindUnsupportedType) {
		// never recorded, so the artifact has no owning row
		s.discardArtifact(up.Path)
		return nil, invokeErr
	}

	rec := &history.Record{
		CreatedAt:   createdAt,
		RequestType: history.TypeFile,
		Prompt:      "Analyze file: " + req.FileName,
		Status:      history.StatusSuccess,
		DurationMs:  durationMs,
		File: &history.FilePayload{
			ResultJSON:     resultJSON,
			CommandName:    spec.Name,
			FileName:       req.FileName,
			FileMime:       up.MediaType,
			FileSize:       up.Size,
			FilePath:       up.Path,
			ExternalFileID: externalID,
		},
	}
	if invokeErr != nil {
		rec.Status = history.StatusError
		rec.Error = common.Message(invokeErr)
		rec.File.ResultJSON = ""
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		s.log.Error("history.insert_failed", "request_type", history.TypeFile, "error", err.Error())
		if invokeErr != nil {
			return nil, invokeErr
		}
		return &FileResult{ResultJSON: resultJSON}, common.PersistenceError("record file request", err)
	}

	if invokeErr != nil {
		return &FileResult{Item: rec}, invokeErr
	}
	return &FileResult{ResultJSON: resultJSON, Item: rec}, nil
}

// History lists recorded requests, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	items, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, common.PersistenceError("list history", err)
	}
	return items, nil
}

// DeleteHistory removes one record (and its artifact) by id and reports
// whether a row was removed.
func (s *Service) DeleteHistory(ctx context.Context, id uint64) (bool, error) {
	deleted, err := s.store.DeleteOne(ctx, id)
	if err != nil {
		return false, common.PersistenceError("delete history record", err)
	}
	return deleted, nil
}

// ClearHistory removes every record and every referenced artifact.
func (s *Service) ClearHistory(ctx context.Context) error {
	if err := s.store.DeleteAll(ctx); err != nil {
		return common.PersistenceError("clear history", err)
	}
	return nil
}

// Commands lists the command specs available on disk.
func (s *Service) Commands() ([]command.Summary, error) {
	return s.resolver.List()
}

func (s *Service) discardArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warn("extract.artifact.discard_failed", "path", path, "error", err.Error())
	}
}
