package service

// DashboardSummary aggregates the counters the landing page shows.
type DashboardSummary struct {
	ActiveEmployees     int            `json:"active_employees"`
	TerminatedEmployees int            `json:"terminated_employees"`
	EnrollmentsByKind   map[string]int `json:"enrollments_by_kind"`
	ImportsByStatus     map[string]int `json:"imports_by_status"`
	UnresolvedAlerts    map[string]int `json:"unresolved_alerts"`
}

// Counter interfaces for the dashboard aggregation. Each repository
// satisfies its own slice of the read surface.
type EmployeeCounter interface {
	Counts() (active int, deleted int, err error)
}

type EnrollmentCounter interface {
	CountActiveByKind() (map[string]int, error)
}

type ImportCounter interface {
	CountsByStatus() (map[string]int, error)
}

type AlertCounter interface {
	CountUnresolved() (map[string]int, error)
}

type ReportService struct {
	employeeRepo EmployeeCounter
	planRepo     EnrollmentCounter
	importRepo   ImportCounter
	alertRepo    AlertCounter
}

func NewReportService(
	employeeRepo EmployeeCounter,
	planRepo EnrollmentCounter,
	importRepo ImportCounter,
	alertRepo AlertCounter,
) *ReportService {
	return &ReportService{
		employeeRepo: employeeRepo,
		planRepo:     planRepo,
		importRepo:   importRepo,
		alertRepo:    alertRepo,
	}
}

func (s *ReportService) DashboardSummary() (*DashboardSummary, error) {
	active, deleted, err := s.employeeRepo.Counts()
	if err != nil {
		return nil, err
	}

	enrollments, err := s.planRepo.CountActiveByKind()
	if err != nil {
		return nil, err
	}

	imports, err := s.importRepo.CountsByStatus()
	if err != nil {
		return nil, err
	}

	alerts, err := s.alertRepo.CountUnresolved()
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		ActiveEmployees:     active,
		TerminatedEmployees: deleted,
		EnrollmentsByKind:   enrollments,
		ImportsByStatus:     imports,
		UnresolvedAlerts:    alerts,
	}, nil
}
