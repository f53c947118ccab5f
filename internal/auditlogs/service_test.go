package auditlogs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agencypulse/reporting-backend/pkg/db/models"
	"github.com/agencypulse/reporting-backend/pkg/enums"
	pkgerrors "github.com/agencypulse/reporting-backend/pkg/errors"
	"github.com/agencypulse/reporting-backend/pkg/logger"
)

type stubAuditRepo struct {
	listRows  []models.AuditLog
	listTotal int64
	listErr   error
	lastQuery listQuery
	created   *models.AuditLog
	createErr error
}

func (s *stubAuditRepo) List(ctx context.Context, opts listQuery) ([]models.AuditLog, int64, error) {
	s.lastQuery = opts
	if s.listErr != nil {
		return nil, 0, s.listErr
	}
	return s.listRows, s.listTotal, nil
}

func (s *stubAuditRepo) Create(ctx context.Context, row *models.AuditLog) (*models.AuditLog, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = row
	return row, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestListLogsFilters(t *testing.T) {
	actorID := uuid.New()
	repo := &stubAuditRepo{
		listRows: []models.AuditLog{
			{ID: uuid.New(), Action: enums.AuditActionLogin, Status: enums.AuditStatusSuccess, OccurredAt: time.Now()},
		},
		listTotal: 7,
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	page, err := svc.ListLogs(context.Background(), ListParams{
		Action:  enums.AuditActionLogin,
		Status:  enums.AuditStatusSuccess,
		ActorID: &actorID,
	})
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if page.TotalCount != 7 || len(page.Items) != 1 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if repo.lastQuery.action != enums.AuditActionLogin || repo.lastQuery.actorID == nil {
		t.Fatalf("filters not forwarded: %+v", repo.lastQuery)
	}
}

func TestListLogsInvalidFilter(t *testing.T) {
	svc, _ := NewService(&stubAuditRepo{})

	_, err := svc.ListLogs(context.Background(), ListParams{Action: enums.AuditAction("made_up")})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRecordDefaultsOccurredAt(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, _ := NewService(repo)

	err := svc.Record(context.Background(), Event{
		Action: "login",
		Status: "success",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if repo.created.OccurredAt.IsZero() {
		t.Fatal("occurred_at should default to now")
	}
}

func TestRecordRejectsUnknownAction(t *testing.T) {
	svc, _ := NewService(&stubAuditRepo{})

	err := svc.Record(context.Background(), Event{Action: "password_changed", Status: "success"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestConsumerAcksMalformedMessages(t *testing.T) {
	svc, _ := NewService(&stubAuditRepo{})
	consumer, err := NewConsumer(svc, testLogger())
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}

	if err := consumer.Process(context.Background(), []byte("{not json")); err != nil {
		t.Fatalf("malformed message must be acked, got %v", err)
	}
}

func TestConsumerAcksInvalidEvents(t *testing.T) {
	svc, _ := NewService(&stubAuditRepo{})
	consumer, _ := NewConsumer(svc, testLogger())

	payload, _ := json.Marshal(Event{Action: "made_up", Status: "success"})
	if err := consumer.Process(context.Background(), payload); err != nil {
		t.Fatalf("invalid event must be acked, got %v", err)
	}
}

func TestConsumerNacksPersistenceFailures(t *testing.T) {
	repo := &stubAuditRepo{createErr: errors.New("db down")}
	svc, _ := NewService(repo)
	consumer, _ := NewConsumer(svc, testLogger())

	payload, _ := json.Marshal(Event{Action: "login", Status: "success", OccurredAt: time.Now()})
	if err := consumer.Process(context.Background(), payload); err == nil {
		t.Fatal("persistence failure must propagate for redelivery")
	}
}

func TestConsumerRecordsValidEvent(t *testing.T) {
	repo := &stubAuditRepo{}
	svc, _ := NewService(repo)
	consumer, _ := NewConsumer(svc, testLogger())

	actorID := uuid.New()
	payload, _ := json.Marshal(Event{
		EventID:    uuid.NewString(),
		ActorID:    &actorID,
		ActorEmail: "ops@agency.test",
		Action:     "report_viewed",
		Status:     "success",
		OccurredAt: time.Now().UTC(),
	})
	if err := consumer.Process(context.Background(), payload); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if repo.created == nil || repo.created.Action != enums.AuditActionReportViewed {
		t.Fatalf("event not recorded: %+v", repo.created)
	}
}
