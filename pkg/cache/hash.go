package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/dukex/flowlint/pkg/models"
)

// WorkflowHash returns a stable SHA-256 hex digest of the workflow's JSON
// form. Two workflows with identical content hash to the same key.
func WorkflowHash(workflow *models.Workflow) (string, error) {
	data, err := json.Marshal(workflow)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(data)

	return hex.EncodeToString(sum[:]), nil
}
