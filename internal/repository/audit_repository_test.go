package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/iep-hero-api/internal/models"
)

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	userID := "advocate_maria"
	resourceID := "s1"
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO audit_logs`)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewAuditRepository(db).Create(context.Background(), &models.AuditLog{
		ID: "a1", UserID: &userID, Action: models.AuditActionApprovalChanged,
		Resource: models.AuditResourceSession, ResourceID: &resourceID,
		NewValues: []byte(`{"approved":true}`), CreatedAt: time.Now(),
	})
	require.NoError(t, err)
}
