package services

import (
	"testing"
	"time"

	"lectoria/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableTestsEntryLevelAndUngated(t *testing.T) {
	ps, db := newTestService(t)
	user := createUser(t, db, 1)
	testA := createTest(t, db, "Entrada", 1)
	testB := createTest(t, db, "Bloqueada", 2)
	testC := createTest(t, db, "Libre", 3)
	createEdge(t, db, testB.ID, testA.ID, 1, true)

	tests, err := ps.AvailableTests(user.ID)
	require.NoError(t, err)

	ids := make([]uint, 0, len(tests))
	for _, tt := range tests {
		ids = append(ids, tt.ID)
	}
	assert.Equal(t, []uint{testA.ID, testC.ID}, ids)
}

func TestAvailableTestsIncludesUnlocked(t *testing.T) {
	ps, db := newTestService(t)
	user := createUser(t, db, 1)
	testA := createTest(t, db, "Entrada", 1)
	testB := createTest(t, db, "Bloqueada", 2)
	createEdge(t, db, testB.ID, testA.ID, 1, true)

	require.NoError(t, db.Create(&models.UnlockedTest{
		UserID:       user.ID,
		TestID:       testB.ID,
		UnlockedByID: testA.ID,
		UnlockedAt:   time.Now(),
		Active:       true,
	}).Error)

	tests, err := ps.AvailableTests(user.ID)
	require.NoError(t, err)
	require.Len(t, tests, 2)
	assert.Equal(t, testA.ID, tests[0].ID)
	assert.Equal(t, testB.ID, tests[1].ID)
}

func TestCanAccessTest(t *testing.T) {
	ps, db := newTestService(t)
	user := createUser(t, db, 1)
	testA := createTest(t, db, "Entrada", 1)
	testB := createTest(t, db, "Bloqueada", 2)
	createEdge(t, db, testB.ID, testA.ID, 1, true)

	ok, err := ps.CanAccessTest(user.ID, testA.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ps.CanAccessTest(user.ID, testB.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
