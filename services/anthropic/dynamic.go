package anthropic

import (
	"context"
	"net/http"
)

// Dynamic is a Complete implementation that resolves the credential on every
// call, so a key saved through the settings store takes effect without a
// restart. The key func returns the caller-facing error to surface when no
// credential is available.
type Dynamic struct {
	key   func() (string, error)
	httpc *http.Client
	opts  []Option
}

// NewDynamic creates a dynamic client around a key source.
func NewDynamic(key func() (string, error), httpc *http.Client, opts ...Option) *Dynamic {
	return &Dynamic{key: key, httpc: httpc, opts: opts}
}

// Complete resolves the key and performs a single messages call.
func (d *Dynamic) Complete(ctx context.Context, prompt string) (string, error) {
	key, err := d.key()
	if err != nil {
		return "", err
	}
	return NewClient(key, d.httpc, d.opts...).Complete(ctx, prompt)
}
