package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"silas.org/internal/policy"
)

func TestGetAppRoleLoadsDetails(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("from app_roles").WithArgs("r-1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "app_id", "name", "authz_role", "role_type"}).
			AddRow("r-1", "app-1", "External User Manager", true, "EXTERNAL"),
	)
	mock.ExpectQuery("from app_role_permissions").WithArgs("r-1").WillReturnRows(
		sqlmock.NewRows([]string{"permission"}).AddRow("user.create_external").AddRow("user.view_external"),
	)
	mock.ExpectQuery("from app_role_user_types").WithArgs("r-1").WillReturnRows(
		sqlmock.NewRows([]string{"user_type"}).AddRow("EXTERNAL"),
	)

	role, err := store.GetAppRole(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("GetAppRole: %v", err)
	}
	if !role.AuthzRole || role.RoleType != policy.RoleTypeExternal {
		t.Fatalf("unexpected role: %+v", role)
	}
	if len(role.Permissions) != 2 || len(role.UserTypeRestriction) != 1 {
		t.Fatalf("details not loaded: %+v", role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetAppRoleNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("from app_roles").WithArgs("r-9").WillReturnError(sql.ErrNoRows)

	_, err := store.GetAppRole(context.Background(), "r-9")
	if !errors.Is(err, policy.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMatrixEdges(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("from role_assignments").WillReturnRows(
		sqlmock.NewRows([]string{"grantor_role_id", "grantable_role_id"}).
			AddRow("r-eum", "r-case").
			AddRow("r-eum", "r-intake"),
	)

	edges, err := store.MatrixEdges(context.Background())
	if err != nil {
		t.Fatalf("MatrixEdges: %v", err)
	}
	if len(edges) != 2 || edges[0].GrantorRoleID != "r-eum" {
		t.Fatalf("unexpected edges: %+v", edges)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetFirmParentPromotesParent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec("update firms set parent_firm_id").WithArgs("firm-child", "firm-parent").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update firms set parent_type = true").WithArgs("firm-parent").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.SetFirmParent(context.Background(), "firm-child", "firm-parent"); err != nil {
		t.Fatalf("SetFirmParent: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetFirmIncludesOffices(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("from firms").WithArgs("firm-1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "code", "parent_firm_id", "parent_type", "created_at", "updated_at"}).
			AddRow("firm-1", "Harbor Legal", "HBL", "", false, now, now),
	)
	mock.ExpectQuery("from offices").WithArgs("firm-1").WillReturnRows(
		sqlmock.NewRows([]string{"id", "firm_id", "name"}).AddRow("office-1", "firm-1", "Main Office"),
	)

	firm, err := store.GetFirm(context.Background(), "firm-1")
	if err != nil {
		t.Fatalf("GetFirm: %v", err)
	}
	if len(firm.Offices) != 1 || firm.Offices[0].FirmID != "firm-1" {
		t.Fatalf("offices not loaded: %+v", firm.Offices)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetDisableReasonNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("from disable_reasons").WithArgs("bogus").WillReturnError(sql.ErrNoRows)

	_, err := store.GetDisableReason(context.Background(), "bogus")
	if !errors.Is(err, policy.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
