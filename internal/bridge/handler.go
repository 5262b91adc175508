package bridge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/pybridge/internal/ctxlog"
	"github.com/specialistvlad/pybridge/internal/dispatch"
	"github.com/specialistvlad/pybridge/internal/namespace"
	"github.com/specialistvlad/pybridge/internal/serialize"
)

// Event names of the host protocol.
const (
	EventDescribe       = "describe"
	EventDescribeResult = "describe:result"
	EventInvoke         = "invoke"
	EventInvokeResult   = "invoke:result"
)

// InvokeRequest is the payload of an invoke event.
type InvokeRequest struct {
	ID   string
	Var  string
	Args []any
}

// Handler answers host requests. It holds no connection state, so it can
// be driven by any transport.
type Handler struct {
	registry   *namespace.Registry
	dispatcher *dispatch.Dispatcher
}

// NewHandler creates a Handler for reg, dispatching through d.
func NewHandler(reg *namespace.Registry, d *dispatch.Dispatcher) *Handler {
	return &Handler{registry: reg, dispatcher: d}
}

// Describe returns the export records of every namespace.
func (h *Handler) Describe() []namespace.ExportRecord {
	return h.registry.Export()
}

// Invoke decodes payload and dispatches it. The result carries the request
// id and either a value or an error message.
func (h *Handler) Invoke(ctx context.Context, payload any) map[string]any {
	req, err := DecodeInvoke(payload)
	if err != nil {
		return map[string]any{"id": req.ID, "error": err.Error()}
	}
	logger := ctxlog.FromContext(ctx).With("id", req.ID, "var", req.Var)

	value, err := h.dispatcher.Dispatch(ctx, req.Var, req.Args)
	if err != nil {
		logger.Warn("Invocation failed.", "error", err)
		return map[string]any{"id": req.ID, "error": err.Error()}
	}
	logger.Debug("Invocation succeeded.")
	return map[string]any{"id": req.ID, "value": value}
}

// DecodeInvoke reads an invoke payload: an object, or a JSON string holding
// one, with "id", "var" and optional "args" keys. The id is kept even when
// the rest of the payload is invalid.
func DecodeInvoke(payload any) (InvokeRequest, error) {
	var req InvokeRequest

	data, ok := payload.(string)
	if !ok {
		raw, err := json.Marshal(payload)
		if err != nil {
			return req, fmt.Errorf("invalid invoke payload: %w", err)
		}
		data = string(raw)
	}
	v, err := serialize.DecodeJSON([]byte(data))
	if err != nil {
		return req, fmt.Errorf("invalid invoke payload: %w", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return req, fmt.Errorf("invalid invoke payload: expected an object, got %T", v)
	}

	if id, ok := obj["id"]; ok && id != nil {
		req.ID = fmt.Sprint(id)
	}
	ref, ok := obj["var"].(string)
	if !ok || ref == "" {
		return req, fmt.Errorf("invalid invoke payload: missing \"var\"")
	}
	req.Var = ref
	switch args := obj["args"].(type) {
	case nil:
	case []any:
		if len(args) > 0 {
			req.Args = args
		}
	default:
		return req, fmt.Errorf("invalid invoke payload: \"args\" must be a list, got %T", args)
	}
	return req, nil
}
