package controls

import (
	"context"
	"encoding/json"
)

// JSONRenderer emits the control list as indented JSON. It is the default
// renderer: every richer front end starts from the same payload.
type JSONRenderer struct{}

// Name implements Renderer.
func (JSONRenderer) Name() string { return "json" }

// ContentType implements Renderer.
func (JSONRenderer) ContentType() string { return "application/json" }

// Render implements Renderer.
func (JSONRenderer) Render(ctx context.Context, controls []Control) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(controls, "", "  ")
}
