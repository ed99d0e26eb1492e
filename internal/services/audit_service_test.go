package services

import (
	"encoding/json"
	"strings"
	"testing"

	"expensetracker/internal/models"
	"expensetracker/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, "UPDATE_TRANSACTION", "transaction", "tx-1", "127.0.0.1", map[string]interface{}{"amount": "12.50"})

	var entries []models.AuditLog
	if err := db.Where("user_id = ?", user.ID).Find(&entries).Error; err != nil {
		t.Fatalf("query audit logs: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(entries))
	}

	entry := entries[0]
	if entry.Action != "UPDATE_TRANSACTION" || entry.ResourceType != "transaction" || entry.ResourceID != "tx-1" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	var changes map[string]interface{}
	if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
		t.Fatalf("changes should be JSON: %v", err)
	}
	if changes["amount"] != "12.50" {
		t.Errorf("unexpected changes: %v", changes)
	}
}

func TestAuditLog_NilChanges(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	svc.Log(user.ID, "DELETE_TRANSACTION", "transaction", "tx-2", "", nil)

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("query audit log: %v", err)
	}
	if entry.Changes != "" {
		t.Errorf("expected empty changes, got %q", entry.Changes)
	}
}

func TestAuditLog_TruncatesIPAddress(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	user := testutil.CreateTestUser(t, db)

	long := strings.Repeat("a", 100)
	svc.Log(user.ID, models.AuditLogin, models.ResourceUser, user.ID, long, map[string]interface{}{})

	var entry models.AuditLog
	if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
		t.Fatalf("query audit log: %v", err)
	}
	if len(entry.IPAddress) != maxIPLength {
		t.Errorf("expected ip address truncated to %d, got %d", maxIPLength, len(entry.IPAddress))
	}
	if entry.Changes != "" {
		t.Errorf("empty changes should not be stored, got %q", entry.Changes)
	}
}
