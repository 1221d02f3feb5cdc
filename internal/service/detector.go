package service

import (
	"context"
	"fmt"

	"benefits-web/internal/models"

	"github.com/sirupsen/logrus"
)

// AuditStore is the read side the detector evaluates. Each query scopes
// itself to the given national IDs; an empty slice means a full audit
// over all active records.
type AuditStore interface {
	DuplicateActiveNationalIDs(ctx context.Context, ids []string) ([]string, error)
	EnrolledWithoutActiveCode(ctx context.Context, ids []string) ([]models.Employee, error)
	OrphanedDependents(ctx context.Context, ids []string) ([]models.Dependent, error)
}

// AlertSink persists alerts. CreateIfAbsent must not raise a second
// unresolved alert for the same category and subject; it reports
// whether a new alert was stored and its id.
type AlertSink interface {
	CreateIfAbsent(ctx context.Context, alert *models.Alert) (bool, int, error)
}

// Detector scans records touched by an import (or the whole active set)
// for business-rule violations and raises one alert per finding. It is
// read-only toward employees and dependents.
type Detector struct {
	store  AuditStore
	alerts AlertSink
	log    *logrus.Logger
}

func NewDetector(store AuditStore, alerts AlertSink, log *logrus.Logger) *Detector {
	return &Detector{store: store, alerts: alerts, log: log}
}

// severity is fixed per category.
var alertSeverities = map[string]string{
	models.AlertDuplicateID:           models.SeverityHigh,
	models.AlertOrphanedDependent:     models.SeverityMedium,
	models.AlertEnrollmentWithoutCode: models.SeverityMedium,
}

// Detect runs all rules over the touched set and returns the ids of the
// alerts created. batchCode ties the alerts back to the import run;
// it may be empty for a standalone audit.
func (d *Detector) Detect(ctx context.Context, batchCode string, touchedIDs []string) ([]int, error) {
	var created []int

	duplicates, err := d.store.DuplicateActiveNationalIDs(ctx, touchedIDs)
	if err != nil {
		return nil, fmt.Errorf("duplicate national ID scan: %w", err)
	}
	for _, id := range duplicates {
		alertID, ok, err := d.raise(ctx, models.AlertDuplicateID, id, batchCode,
			fmt.Sprintf("national ID %s is shared by more than one active employee", maskNationalID(id)))
		if err != nil {
			return nil, err
		}
		if ok {
			created = append(created, alertID)
		}
	}

	enrolled, err := d.store.EnrolledWithoutActiveCode(ctx, touchedIDs)
	if err != nil {
		return nil, fmt.Errorf("enrollment without code scan: %w", err)
	}
	for _, emp := range enrolled {
		alertID, ok, err := d.raise(ctx, models.AlertEnrollmentWithoutCode,
			fmt.Sprintf("employee:%d", emp.ID), batchCode,
			fmt.Sprintf("employee %s has a plan enrollment but no active registration code", emp.Name))
		if err != nil {
			return nil, err
		}
		if ok {
			created = append(created, alertID)
		}
	}

	orphans, err := d.store.OrphanedDependents(ctx, touchedIDs)
	if err != nil {
		return nil, fmt.Errorf("orphaned dependent scan: %w", err)
	}
	for _, dep := range orphans {
		alertID, ok, err := d.raise(ctx, models.AlertOrphanedDependent,
			fmt.Sprintf("dependent:%d", dep.ID), batchCode,
			fmt.Sprintf("dependent %s references a terminated employee", dep.Name))
		if err != nil {
			return nil, err
		}
		if ok {
			created = append(created, alertID)
		}
	}

	if len(created) > 0 {
		d.log.WithFields(logrus.Fields{
			"batch_code": batchCode,
			"alerts":     len(created),
		}).Info("inconsistencies detected")
	}
	return created, nil
}

func (d *Detector) raise(ctx context.Context, category, subject, batchCode, message string) (int, bool, error) {
	alert := &models.Alert{
		Category:   category,
		Severity:   alertSeverities[category],
		Message:    message,
		SubjectRef: subject,
	}
	if batchCode != "" {
		alert.BatchCode.String = batchCode
		alert.BatchCode.Valid = true
	}
	ok, id, err := d.alerts.CreateIfAbsent(ctx, alert)
	if err != nil {
		return 0, false, fmt.Errorf("store alert: %w", err)
	}
	return id, ok, nil
}

// maskNationalID keeps only the leading and trailing digits of an ID in
// operator-facing messages.
func maskNationalID(id string) string {
	if len(id) != 11 {
		return id
	}
	return id[:3] + ".***.***-" + id[9:]
}
