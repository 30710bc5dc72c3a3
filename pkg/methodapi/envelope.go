// Package methodapi defines the wire-level method invocation contract (C7,
// §4.8): inputs and outputs travel as protobuf structs so a method can be
// invoked in-process or, via the accompanying gRPC service, out-of-process
// on a remote executor pool.
package methodapi

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Envelope is the wire shape every method consumes and returns.
type Envelope = *structpb.Struct

// ToEnvelope converts a plain Go map into a protobuf struct envelope.
func ToEnvelope(m map[string]any) (Envelope, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("methodapi: build envelope: %w", err)
	}
	return s, nil
}

// FromEnvelope converts an envelope back into a plain Go map.
func FromEnvelope(e Envelope) map[string]any {
	if e == nil {
		return nil
	}
	return e.AsMap()
}
