package aiengine

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ContentPart is one block of a multi-part request: either inline text, a
// file reference by URI, or raw bytes with a MIME type.
type ContentPart struct {
	Text     string
	FileURI  string
	MIMEType string
	Data     []byte
}

// ContentRequest is the payload handed to the remote-call primitive. The
// wire protocol behind it is irrelevant to the engine; the primitive sends
// the request and asks the provider to shape its response to Schema.
type ContentRequest struct {
	Model  string
	System string
	Prompt string
	Parts  []ContentPart

	// Schema is an opaque provider-specific response schema descriptor.
	Schema     any
	SchemaName string
}

// RawResult is the unparsed outcome of one remote call.
type RawResult struct {
	Text       string
	Model      string
	TokensUsed int32
}

// ContentCaller is the remote-call primitive supplied by the platform
// layer. Implementations must surface failures as tagged variants
// (HTTPError, timeout signals, net errors) so Classify stays total.
type ContentCaller interface {
	GenerateJSON(ctx context.Context, req ContentRequest) (*RawResult, error)
}

// CallSpec describes one structured call: the prompt assembly, the input
// payload validated before any network activity, and the schema the
// response must satisfy.
type CallSpec struct {
	// Operation names the call in logs.
	Operation string

	Model  string
	System string
	Prompt string

	// Payload is the caller-supplied input, checked against its validate
	// tags before the first attempt.
	Payload any

	Schema     any
	SchemaName string

	// files is populated by CallAIWithFiles so the multi-part front stays a
	// thin delegation over CallAI.
	files []ContentPart
}

// CallOptions tunes a single structured call. The zero value retries
// transient failures and treats malformed responses as terminal.
type CallOptions struct {
	// DisableRetry forces a single attempt regardless of classification.
	DisableRetry bool

	// RetryOnProcessing opts into retrying when a successful call returns a
	// payload that fails parsing or schema validation. By default that is
	// treated as a logic error, not a transient fault.
	RetryOnProcessing bool
}

// structuredResult pairs a parsed value with the raw call outcome so usage
// metadata survives the generic retry path.
type structuredResult[T any] struct {
	value T
	raw   *RawResult
}

func (r *structuredResult[T]) usage() (string, int32) {
	if r.raw == nil {
		return "", 0
	}
	return r.raw.Model, r.raw.TokensUsed
}

// CallAI validates spec.Payload, invokes the remote-call primitive through
// the retry orchestrator, and parses and validates the response into T. It
// returns either a schema-valid T or a classified *OperationError, never a
// partial result. A payload validation failure is reported immediately and
// consumes zero attempts.
func CallAI[T any](ctx context.Context, e *Engine, caller ContentCaller, spec CallSpec, opts CallOptions) (T, Metadata, error) {
	var zero T

	if spec.Payload != nil {
		if err := e.ValidateInput(spec.Payload); err != nil {
			return zero, Metadata{}, err
		}
	}

	op := func(ctx context.Context) (*structuredResult[T], error) {
		raw, err := caller.GenerateJSON(ctx, ContentRequest{
			Model:      spec.Model,
			System:     spec.System,
			Prompt:     spec.Prompt,
			Parts:      clonedParts(spec),
			Schema:     spec.Schema,
			SchemaName: spec.SchemaName,
		})
		if err != nil {
			return nil, err
		}

		value, err := decodeStructured[T](raw.Text)
		if err != nil {
			return nil, NewOperationError(KindProcessing,
				"response failed "+spec.SchemaName+" schema parsing", opts.RetryOnProcessing, err)
		}
		if err := validateOutput(e, value); err != nil {
			return nil, NewOperationError(KindProcessing,
				"response failed "+spec.SchemaName+" schema validation", opts.RetryOnProcessing, err)
		}
		return &structuredResult[T]{value: value, raw: raw}, nil
	}

	res, meta, err := ExecuteWithRetry(ctx, e, spec.Operation, !opts.DisableRetry, op)
	if err != nil {
		return zero, meta, err
	}
	return res.value, meta, nil
}

// CallAIWithFiles assembles a multi-part request (system instructions plus
// mixed text/file-reference blocks) and delegates to the same retry and
// validation path as CallAI. It introduces no new failure modes.
func CallAIWithFiles[T any](ctx context.Context, e *Engine, caller ContentCaller, spec CallSpec, files []ContentPart, opts CallOptions) (T, Metadata, error) {
	spec.files = files
	return CallAI[T](ctx, e, caller, spec, opts)
}

func clonedParts(spec CallSpec) []ContentPart {
	if len(spec.files) == 0 {
		return nil
	}
	parts := make([]ContentPart, len(spec.files))
	copy(parts, spec.files)
	return parts
}

// decodeStructured parses near-JSON model output into T, repairing common
// malformations (trailing commas, single quotes, fenced blocks) before
// giving up.
func decodeStructured[T any](text string) (T, error) {
	var out T
	trimmed := strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(trimmed)
		if rerr != nil {
			return out, err
		}
		var fixed T
		if uerr := json.Unmarshal([]byte(repaired), &fixed); uerr != nil {
			return out, uerr
		}
		return fixed, nil
	}
	return out, nil
}

// validateOutput applies validate tags to struct-shaped results. Non-struct
// results (raw strings, slices) have no tags to enforce.
func validateOutput(e *Engine, v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return e.validate.Struct(rv.Interface())
}
