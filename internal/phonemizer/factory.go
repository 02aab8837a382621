package phonemizer

import "fmt"

// Backend implementation names accepted by NewFactory.
const (
	BackendEspeak = "espeak"
	BackendGoruut = "goruut"
)

// NewFactory returns a Factory for the named backend implementation.
// espeakPath is only used by the espeak backend; empty means PATH lookup.
func NewFactory(backend, espeakPath string) (Factory, error) {
	switch backend {
	case BackendEspeak:
		return func(language string) (Backend, error) {
			return NewEspeakBackend(espeakPath, language), nil
		}, nil
	case BackendGoruut:
		return func(language string) (Backend, error) {
			return NewGoruutBackend(language)
		}, nil
	default:
		return nil, fmt.Errorf("unknown phonemizer backend %q (want %s|%s)", backend, BackendEspeak, BackendGoruut)
	}
}
