package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsift/docsift/internal/ai"
	"github.com/docsift/docsift/internal/command"
	"github.com/docsift/docsift/internal/common"
)

// Completer is the slice of the AI client the invoker depends on.
type Completer interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (string, error)
}

// Invoker turns normalized content parts plus a command spec into one
// synchronous completion call.
type Invoker struct {
	client Completer
	log    *slog.Logger
}

func NewInvoker(client Completer, log *slog.Logger) *Invoker {
	if log == nil {
		log = slog.Default()
	}
	return &Invoker{client: client, log: log}
}

// Chat sends a bare text prompt and returns the completion text unmodified.
func (iv *Invoker) Chat(ctx context.Context, prompt string) (string, error) {
	reqID := uuid.NewString()
	start := time.Now()
	iv.log.Info("extract.chat.start", "req_id", reqID)

	out, err := iv.client.Complete(ctx, ai.CompletionRequest{
		Parts: []ai.ContentPart{ai.TextPart(prompt)},
	})
	if err != nil {
		iv.log.Error("extract.chat.error", "req_id", reqID, "error", err.Error())
		return "", common.ServiceError("completion failed", err)
	}

	iv.log.Info("extract.chat.done", "req_id", reqID, "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

// Extract submits the content parts under spec's prompts and schema in a
// single call and returns a JSON document. The spec's user prompt always
// rides as the final part. Output that does not parse as JSON degrades to
// a {"_raw": ...} wrapper instead of failing the call.
func (iv *Invoker) Extract(ctx context.Context, parts []ai.ContentPart, spec *command.Spec) (string, error) {
	reqID := uuid.NewString()
	start := time.Now()
	iv.log.Info("extract.invoke.start", "req_id", reqID, "command", spec.Name, "parts", len(parts))

	all := make([]ai.ContentPart, 0, len(parts)+1)
	all = append(all, parts...)
	all = append(all, ai.TextPart(spec.UserPrompt))

	out, err := iv.client.Complete(ctx, ai.CompletionRequest{
		Model:          spec.Model,
		System:         spec.System,
		Parts:          all,
		ResponseFormat: responseFormat(spec),
	})
	if err != nil {
		iv.log.Error("extract.invoke.error", "req_id", reqID, "command", spec.Name, "error", err.Error())
		return "", common.ServiceError("completion failed", err)
	}

	iv.log.Info("extract.invoke.done", "req_id", reqID, "command", spec.Name, "elapsed_ms", time.Since(start).Milliseconds())
	return iv.coerceJSON(spec, out), nil
}

func responseFormat(spec *command.Spec) *ai.ResponseFormat {
	if len(spec.Schema) > 0 {
		name := spec.SchemaName
		if name == "" {
			name = spec.Name
		}
		return &ai.ResponseFormat{
			Type:       "json_schema",
			JSONSchema: &ai.JSONSchema{Name: name, Schema: spec.Schema},
		}
	}
	if spec.SchemaName != "" {
		return &ai.ResponseFormat{Type: "json_object"}
	}
	return nil
}

// coerceJSON guarantees the caller a JSON document. A schema mismatch is
// logged and tolerated; only unparseable output triggers the _raw wrapper.
func (iv *Invoker) coerceJSON(spec *command.Spec, out string) string {
	trimmed := strings.TrimSpace(out)
	if !json.Valid([]byte(trimmed)) {
		iv.log.Warn("extract.result.not_json", "command", spec.Name)
		wrapped, _ := json.Marshal(map[string]string{"_raw": out})
		return string(wrapped)
	}
	if spec.Compiled != nil {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
			if verr := spec.Compiled.Validate(v); verr != nil {
				iv.log.Warn("extract.result.schema_mismatch", "command", spec.Name, "error", verr.Error())
			}
		}
	}
	return trimmed
}
