// internal/snapshot/schema.go
package snapshot

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	stderrors "feedback-ranking/internal/common/errors"
)

// documentSchema pins the persisted snapshot shape. The snapshot is a
// stable, versionable document consumed by dashboards; a write that does
// not conform is a bug in the producer, caught here before it reaches
// storage.
const documentSchema = `{
	"type": "object",
	"required": ["category", "weekId", "weekStart", "weekEnd", "generatedAt", "totalProductsEvaluated", "rankings"],
	"properties": {
		"category": {"type": "string", "minLength": 1},
		"weekId": {"type": "string", "pattern": "^[0-9]{4}-W[0-9]{2}$"},
		"weekStart": {"type": "string"},
		"weekEnd": {"type": "string"},
		"generatedAt": {"type": "string"},
		"totalProductsEvaluated": {"type": "integer", "minimum": 0},
		"rankings": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["rank", "productId", "productName", "score", "metrics", "scoreBreakdown"],
				"properties": {
					"rank": {"type": "integer", "minimum": 1},
					"productId": {"type": "string", "minLength": 1},
					"productName": {"type": "string"},
					"score": {"type": "number"},
					"metrics": {"type": "object"},
					"scoreBreakdown": {
						"type": "object",
						"required": ["nps", "sentiment", "engagement", "volume", "recency", "trend"]
					}
				}
			}
		}
	}
}`

var compiledSchema = gojsonschema.NewStringLoader(documentSchema)

// validateDocument checks a marshaled snapshot against the document schema.
func validateDocument(doc []byte) error {
	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		details = append(details, e.String())
	}
	return stderrors.NewSnapshotInvalidError(strings.Join(details, "; "))
}
