package methodapi

import "context"

// NewFixtureRegistry builds a registry with one deterministic extract/score
// pair per D{d}Q{q} class, mirroring catalog.NewFixture's declared methods.
func NewFixtureRegistry(classNames []string) (*Registry, error) {
	reg := NewRegistry()
	for _, class := range classNames {
		if err := reg.Register(class, "extract", MethodFunc(extractFixture)); err != nil {
			return nil, err
		}
		if err := reg.Register(class, "score", MethodFunc(scoreFixture)); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func extractFixture(ctx context.Context, in Envelope) (Envelope, error) {
	text, _ := FromEnvelope(in)["chunk_text"].(string)
	return ToEnvelope(map[string]any{"matches": len(text) > 0})
}

func scoreFixture(ctx context.Context, in Envelope) (Envelope, error) {
	matches, _ := FromEnvelope(in)["matches"].(bool)
	score := 0.5
	if matches {
		score = 0.9
	}
	return ToEnvelope(map[string]any{"score": score})
}
