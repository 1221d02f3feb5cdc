package service

import (
	"context"
	"testing"

	"benefits-web/internal/models"
	"benefits-web/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditStore struct {
	duplicates []string
	enrolled   []models.Employee
	orphans    []models.Dependent
	scopes     [][]string
}

func (s *fakeAuditStore) DuplicateActiveNationalIDs(ctx context.Context, ids []string) ([]string, error) {
	s.scopes = append(s.scopes, ids)
	return s.duplicates, nil
}

func (s *fakeAuditStore) EnrolledWithoutActiveCode(ctx context.Context, ids []string) ([]models.Employee, error) {
	return s.enrolled, nil
}

func (s *fakeAuditStore) OrphanedDependents(ctx context.Context, ids []string) ([]models.Dependent, error) {
	return s.orphans, nil
}

type fakeAlertSink struct {
	alerts []*models.Alert
	nextID int
}

func (s *fakeAlertSink) CreateIfAbsent(ctx context.Context, alert *models.Alert) (bool, int, error) {
	for _, existing := range s.alerts {
		if existing.Category == alert.Category && existing.SubjectRef == alert.SubjectRef && !existing.Resolved {
			return false, existing.ID, nil
		}
	}
	s.nextID++
	alert.ID = s.nextID
	s.alerts = append(s.alerts, alert)
	return true, alert.ID, nil
}

func TestDetectorRaisesDuplicateIDAlert(t *testing.T) {
	store := &fakeAuditStore{duplicates: []string{"12345678901"}}
	sink := &fakeAlertSink{}
	d := NewDetector(store, sink, utils.GetLogger())

	created, err := d.Detect(context.Background(), "IMPORT-abc123", []string{"12345678901"})
	require.NoError(t, err)
	require.Len(t, created, 1)

	alert := sink.alerts[0]
	assert.Equal(t, models.AlertDuplicateID, alert.Category)
	assert.Equal(t, models.SeverityHigh, alert.Severity)
	assert.Equal(t, "12345678901", alert.SubjectRef)
	assert.Equal(t, "IMPORT-abc123", alert.BatchCode.String)
	// Operator message never carries the full national ID.
	assert.NotContains(t, alert.Message, "12345678901")
}

func TestDetectorDoesNotDuplicateOpenAlerts(t *testing.T) {
	store := &fakeAuditStore{duplicates: []string{"12345678901"}}
	sink := &fakeAlertSink{}
	d := NewDetector(store, sink, utils.GetLogger())

	first, err := d.Detect(context.Background(), "IMPORT-a", []string{"12345678901"})
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := d.Detect(context.Background(), "IMPORT-b", []string{"12345678901"})
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, sink.alerts, 1)
}

func TestDetectorSeverityMapping(t *testing.T) {
	store := &fakeAuditStore{
		duplicates: []string{"12345678901"},
		enrolled:   []models.Employee{{ID: 7, Name: "Ana Souza"}},
		orphans:    []models.Dependent{{ID: 4, Name: "Pedro Souza"}},
	}
	sink := &fakeAlertSink{}
	d := NewDetector(store, sink, utils.GetLogger())

	created, err := d.Detect(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Len(t, created, 3)

	bySeverity := map[string]string{}
	for _, a := range sink.alerts {
		bySeverity[a.Category] = a.Severity
		assert.False(t, a.BatchCode.Valid)
	}
	assert.Equal(t, models.SeverityHigh, bySeverity[models.AlertDuplicateID])
	assert.Equal(t, models.SeverityMedium, bySeverity[models.AlertEnrollmentWithoutCode])
	assert.Equal(t, models.SeverityMedium, bySeverity[models.AlertOrphanedDependent])
}
