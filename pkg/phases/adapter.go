package phases

import (
	"strings"

	"github.com/codeready-toolchain/policyproof/pkg/model"
)

// Adapt runs the CPP-to-PreprocessedDocument adapter (§4.4): one sentence
// entry and one budget table row per chunk, preserving the CPP's
// policy/quality metadata verbatim.
func Adapt(documentID string, cpp *model.CanonPolicyPackage) *model.PreprocessedDocument {
	sentences := make([]model.Sentence, 0, len(cpp.Chunks))
	tables := make([]model.TableRow, 0, len(cpp.Chunks))
	chunkInfos := make([]model.PreprocessedChunkInfo, 0, len(cpp.Chunks))
	var rawText strings.Builder

	for _, c := range cpp.Chunks {
		sentences = append(sentences, model.Sentence{ChunkID: c.ID, Text: c.Text})
		tables = append(tables, model.TableRow{ChunkID: c.ID, Budget: c.Budget})
		chunkInfos = append(chunkInfos, model.PreprocessedChunkInfo{
			ID:            c.ID,
			PolicyAreaID:  c.PolicyAreaID,
			DimensionID:   c.DimensionID,
			Resolution:    c.Resolution,
			HasProvenance: c.Provenance != nil,
		})
		rawText.WriteString(c.Text)
		rawText.WriteByte('\n')
	}

	return &model.PreprocessedDocument{
		DocumentID: documentID,
		RawText:    rawText.String(),
		Sentences:  sentences,
		Tables:     tables,
		Metadata: model.PreprocessedMetadata{
			PolicyManifest: cpp.PolicyManifest,
			Quality:        cpp.Quality,
			Chunks:         chunkInfos,
		},
		Matrix: model.BuildChunkMatrix(cpp),
	}
}
