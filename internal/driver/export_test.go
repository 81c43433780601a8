package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/agenthands/wardwatch/internal/core/cluster"
	"github.com/agenthands/wardwatch/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() cluster.Document {
	return cluster.ToDocument(cluster.Build([]model.ContactPair{
		{PatientID1: "P1", PatientID2: "P2", Organism: "X", Location: "WardA"},
		{PatientID1: "P2", PatientID2: "P3", Organism: "X", Location: "WardA"},
		{PatientID1: "P4", PatientID2: "P5", Organism: "Y", Location: "ICU"},
	}))
}

func TestSaveDocument(t *testing.T) {
	m := &MockDriver{}

	err := SaveDocument(context.Background(), m, "run-1", sampleDocument())
	require.NoError(t, err)

	require.Len(t, m.Executed, 4) // patients, contacts, two clusters
	assert.Equal(t, SavePatientsQuery, m.Executed[0].Query)
	assert.ElementsMatch(t, []string{"P1", "P2", "P3", "P4", "P5"}, m.Executed[0].Params["ids"])

	assert.Equal(t, SaveContactsQuery, m.Executed[1].Query)
	assert.Len(t, m.Executed[1].Params["edges"], 3)

	for _, q := range m.Executed[2:] {
		assert.Equal(t, SaveClusterQuery, q.Query)
		assert.Equal(t, "run-1", q.Params["run_id"])
	}
	assert.Equal(t, 3, m.Executed[2].Params["size"])
}

func TestSaveDocument_EmptyGraphWritesNothing(t *testing.T) {
	m := &MockDriver{}
	err := SaveDocument(context.Background(), m, "run-1", cluster.ToDocument(cluster.Build(nil)))
	require.NoError(t, err)
	assert.Empty(t, m.Executed)
}

func TestSaveDocument_Error(t *testing.T) {
	m := &MockDriver{Err: errors.New("boom"), FailOn: SaveContactsQuery}

	err := SaveDocument(context.Background(), m, "run-1", sampleDocument())

	assert.ErrorContains(t, err, "failed to save contacts")
	assert.Len(t, m.Executed, 2)
}

func TestDeleteRun(t *testing.T) {
	m := &MockDriver{}
	require.NoError(t, DeleteRun(context.Background(), m, "run-9"))
	require.Len(t, m.Executed, 1)
	assert.Equal(t, "run-9", m.Executed[0].Params["run_id"])
}
