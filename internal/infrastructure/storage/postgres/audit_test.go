package postgres

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smeerp/internal/domain/audit"
)

func TestAuditService_PackUnpack(t *testing.T) {
	svc, err := NewAuditService()
	require.NoError(t, err)

	small, err := json.Marshal(map[string]any{"reason": "duplicate receipt"})
	require.NoError(t, err)
	entry := AuditEntry{Action: audit.ActionRefuse, Changes: small}
	svc.pack(&entry)
	assert.Equal(t, CompressionNone, entry.CompressionAlgo)
	assert.JSONEq(t, string(small), string(entry.Changes))

	large, err := json.Marshal(map[string]any{"note": strings.Repeat("backdated ", 2000)})
	require.NoError(t, err)
	entry = AuditEntry{Action: audit.ActionBackdate, Changes: large}
	svc.pack(&entry)
	assert.Equal(t, CompressionZstd, entry.CompressionAlgo)
	assert.Nil(t, entry.Changes)
	assert.Less(t, len(entry.ChangesCompressed), len(large))

	require.NoError(t, svc.unpack(&entry))
	assert.Equal(t, large, []byte(entry.Changes))
	assert.Nil(t, entry.ChangesCompressed)
}

func TestAuditColumns(t *testing.T) {
	assert.Equal(t, []string{
		"id", "entity_type", "entity_id", "action", "user_id", "user_email",
		"changes", "changes_compressed", "compression_algo", "created_at",
	}, auditColumns)
}
