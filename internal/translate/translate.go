// Package translate defines the translation provider surface. A real
// translation API client is out of scope, so the only implementation
// here is Passthrough, which backs `translation.enabled=false`, the
// default.
package translate

import "context"

// Provider translates text between language codes.
type Provider interface {
	Initialize(ctx context.Context) error
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Passthrough returns text unchanged, regardless of sourceLang/targetLang.
type Passthrough struct{}

// New builds the passthrough provider.
func New() *Passthrough {
	return &Passthrough{}
}

func (p *Passthrough) Initialize(ctx context.Context) error {
	return nil
}

func (p *Passthrough) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return text, nil
}
