package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *Store) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock, &Store{db: db}
}

func TestNewRequiresConnection(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestGetCustomer(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "preferences"}).
		AddRow("cust-1", "Sarah Chen", "sarah@example.com", `{"style":"casual","size":"M"}`)
	mock.ExpectQuery("SELECT id, name, email, preferences").
		WithArgs("cust-1").
		WillReturnRows(rows)

	customer, err := store.GetCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "Sarah Chen", customer.Name)
	assert.Equal(t, "casual", customer.Preferences["style"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerNotFound(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, email, preferences").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	customer, err := store.GetCustomer(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestRecentTicketsScansTagsArray(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "title", "status", "priority", "description", "tags", "created_at"}).
		AddRow("t-1", "Order inquiry", "open", "high", "Where is my order?", "{ORDER}", created)
	mock.ExpectQuery("SELECT id, title, status, priority, description, tags, created_at").
		WithArgs("cust-1", 5).
		WillReturnRows(rows)

	tickets, err := store.RecentTickets(context.Background(), "cust-1", 5)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, []string{"ORDER"}, tickets[0].Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerContextFormatting(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, email, preferences").
		WithArgs("cust-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "preferences"}).
			AddRow("cust-1", "Sarah Chen", "sarah@example.com", `{"style":"casual"}`))

	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, title, status, priority, description, tags, created_at").
		WithArgs("cust-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority", "description", "tags", "created_at"}).
			AddRow("t-1", "Jeans purchase", "resolved", "low", "Bought denim jeans", "{PURCHASE}", created).
			AddRow("t-2", "Sizing question", "open", "medium", "Needs a size check", "{}", created))

	mock.ExpectQuery("SELECT id, type, content, metadata, created_at").
		WithArgs("cust-1", 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "content", "metadata", "created_at"}).
			AddRow("i-1", "outreach", "Welcome back!", `{"success":true}`, created))

	out, err := store.CustomerContext(context.Background(), "cust-1")
	require.NoError(t, err)

	assert.Contains(t, out, "Customer Profile:")
	assert.Contains(t, out, "- Name: Sarah Chen")
	assert.Contains(t, out, "=== Purchase History ===")
	assert.Contains(t, out, "=== Open Tickets ===")
	assert.Contains(t, out, "Success: true")
	assert.Contains(t, out, `"style": "casual"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerContextUnknownCustomer(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, name, email, preferences").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.CustomerContext(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no customer found")
}

func TestRecordInteraction(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO interactions").
		WithArgs(sqlmock.AnyArg(), "cust-1", "outreach", "Hello there", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.RecordInteraction(context.Background(), "cust-1", "Hello there", true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogEmail(t *testing.T) {
	db, mock, store := setupMockDB(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO email_log").
		WithArgs(sqlmock.AnyArg(), "cust-1", "sarah@example.com", "Your order", "msg-123", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := store.LogEmail(context.Background(), "cust-1", "sarah@example.com", "Your order", "msg-123")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFormatTicketsSections(t *testing.T) {
	tickets := []Ticket{
		{Title: "Open issue", Status: "open", Tags: nil},
		{Title: "Old purchase", Status: "open", Tags: []string{"PURCHASE"}},
		{Title: "Done", Status: "CLOSED"},
	}

	out := formatTickets(tickets)
	assert.Contains(t, out, "=== Open Tickets ===")
	assert.Contains(t, out, "=== Purchase History ===")
	assert.Contains(t, out, "=== Recently Resolved ===")
	// Purchase tag wins over status.
	assert.Contains(t, out, "Old purchase")
}
