package pg

import (
	"context"
	"database/sql"
	"errors"

	"silas.org/internal/policy"
)

func (s *Store) GetFirm(ctx context.Context, firmID string) (policy.Firm, error) {
	if s.db == nil {
		return policy.Firm{}, errors.New("database connection unavailable")
	}
	return s.firmByID(ctx, firmID)
}

func (s *Store) ListFirms(ctx context.Context) ([]policy.Firm, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	return s.queryFirms(ctx, `
		select id, name, coalesce(code, ''), coalesce(parent_firm_id, ''), parent_type, created_at, updated_at
		from firms
		order by name
	`)
}

func (s *Store) ChildFirms(ctx context.Context, parentFirmID string) ([]policy.Firm, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	return s.queryFirms(ctx, `
		select id, name, coalesce(code, ''), coalesce(parent_firm_id, ''), parent_type, created_at, updated_at
		from firms
		where parent_firm_id = $1
		order by name
	`, parentFirmID)
}

func (s *Store) CreateFirm(ctx context.Context, firm policy.Firm) (policy.Firm, error) {
	if s.db == nil {
		return policy.Firm{}, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return policy.Firm{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		insert into firms (id, name, code, parent_firm_id, parent_type)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, firm.ID, firm.Name, nullIfEmpty(firm.Code), nullIfEmpty(firm.ParentFirmID), firm.ParentType)
	if err := row.Scan(&firm.CreatedAt, &firm.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return policy.Firm{}, policy.ErrConflict
			case pgErrForeignKeyViolation:
				return policy.Firm{}, policy.ErrNotFound
			}
		}
		return policy.Firm{}, err
	}
	for _, office := range firm.Offices {
		if _, err := tx.ExecContext(ctx, `
			insert into offices (id, firm_id, name)
			values ($1, $2, $3)
		`, office.ID, firm.ID, office.Name); err != nil {
			return policy.Firm{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return policy.Firm{}, err
	}
	return firm, nil
}

func (s *Store) SetFirmParent(ctx context.Context, firmID, parentFirmID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update firms set parent_firm_id = $2, updated_at = now()
		where id = $1
	`, firmID, parentFirmID)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return policy.ErrNotFound
		}
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return policy.ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `
		update firms set parent_type = true, updated_at = now()
		where id = $1 and not parent_type
	`, parentFirmID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListApps(ctx context.Context) ([]policy.App, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `select id, name from apps order by name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []policy.App
	for rows.Next() {
		var app policy.App
		if err := rows.Scan(&app.ID, &app.Name); err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range apps {
		roles, err := s.rolesByApp(ctx, apps[i].ID)
		if err != nil {
			return nil, err
		}
		apps[i].Roles = roles
	}
	return apps, nil
}

func (s *Store) GetApp(ctx context.Context, appID string) (policy.App, error) {
	if s.db == nil {
		return policy.App{}, errors.New("database connection unavailable")
	}
	var app policy.App
	err := s.db.QueryRowContext(ctx, `select id, name from apps where id = $1`, appID).Scan(&app.ID, &app.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return policy.App{}, policy.ErrNotFound
	}
	if err != nil {
		return policy.App{}, err
	}
	roles, err := s.rolesByApp(ctx, app.ID)
	if err != nil {
		return policy.App{}, err
	}
	app.Roles = roles
	return app, nil
}

func (s *Store) GetAppRole(ctx context.Context, roleID string) (policy.AppRole, error) {
	if s.db == nil {
		return policy.AppRole{}, errors.New("database connection unavailable")
	}
	var role policy.AppRole
	err := s.db.QueryRowContext(ctx, `
		select id, app_id, name, authz_role, role_type
		from app_roles
		where id = $1
	`, roleID).Scan(&role.ID, &role.AppID, &role.Name, &role.AuthzRole, &role.RoleType)
	if errors.Is(err, sql.ErrNoRows) {
		return policy.AppRole{}, policy.ErrNotFound
	}
	if err != nil {
		return policy.AppRole{}, err
	}
	if err := s.loadRoleDetails(ctx, &role); err != nil {
		return policy.AppRole{}, err
	}
	return role, nil
}

func (s *Store) MatrixEdges(ctx context.Context) ([]policy.RoleAssignment, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select grantor_role_id, grantable_role_id
		from role_assignments
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []policy.RoleAssignment
	for rows.Next() {
		var e policy.RoleAssignment
		if err := rows.Scan(&e.GrantorRoleID, &e.GrantableRoleID); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return edges, nil
}

func (s *Store) ListDisableReasons(ctx context.Context) ([]policy.DisableReason, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	rows, err := s.db.QueryContext(ctx, `
		select id, description from disable_reasons order by description
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reasons []policy.DisableReason
	for rows.Next() {
		var r policy.DisableReason
		if err := rows.Scan(&r.ID, &r.Description); err != nil {
			return nil, err
		}
		reasons = append(reasons, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reasons, nil
}

func (s *Store) GetDisableReason(ctx context.Context, reasonID string) (policy.DisableReason, error) {
	if s.db == nil {
		return policy.DisableReason{}, errors.New("database connection unavailable")
	}
	var r policy.DisableReason
	err := s.db.QueryRowContext(ctx, `
		select id, description from disable_reasons where id = $1
	`, reasonID).Scan(&r.ID, &r.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return policy.DisableReason{}, policy.ErrNotFound
	}
	if err != nil {
		return policy.DisableReason{}, err
	}
	return r, nil
}

func (s *Store) queryFirms(ctx context.Context, query string, args ...any) ([]policy.Firm, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var firms []policy.Firm
	for rows.Next() {
		var f policy.Firm
		if err := rows.Scan(&f.ID, &f.Name, &f.Code, &f.ParentFirmID, &f.ParentType, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		firms = append(firms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range firms {
		offices, err := s.officesByFirm(ctx, firms[i].ID)
		if err != nil {
			return nil, err
		}
		firms[i].Offices = offices
	}
	return firms, nil
}

func (s *Store) firmByID(ctx context.Context, firmID string) (policy.Firm, error) {
	var f policy.Firm
	err := s.db.QueryRowContext(ctx, `
		select id, name, coalesce(code, ''), coalesce(parent_firm_id, ''), parent_type, created_at, updated_at
		from firms
		where id = $1
	`, firmID).Scan(&f.ID, &f.Name, &f.Code, &f.ParentFirmID, &f.ParentType, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return policy.Firm{}, policy.ErrNotFound
	}
	if err != nil {
		return policy.Firm{}, err
	}
	offices, err := s.officesByFirm(ctx, f.ID)
	if err != nil {
		return policy.Firm{}, err
	}
	f.Offices = offices
	return f, nil
}

func (s *Store) officesByFirm(ctx context.Context, firmID string) ([]policy.Office, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, firm_id, name from offices where firm_id = $1 order by name
	`, firmID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offices []policy.Office
	for rows.Next() {
		var o policy.Office
		if err := rows.Scan(&o.ID, &o.FirmID, &o.Name); err != nil {
			return nil, err
		}
		offices = append(offices, o)
	}
	return offices, rows.Err()
}

func (s *Store) rolesByApp(ctx context.Context, appID string) ([]policy.AppRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, app_id, name, authz_role, role_type
		from app_roles
		where app_id = $1
		order by name
	`, appID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []policy.AppRole
	for rows.Next() {
		var r policy.AppRole
		if err := rows.Scan(&r.ID, &r.AppID, &r.Name, &r.AuthzRole, &r.RoleType); err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range roles {
		if err := s.loadRoleDetails(ctx, &roles[i]); err != nil {
			return nil, err
		}
	}
	return roles, nil
}

func (s *Store) loadRoleDetails(ctx context.Context, role *policy.AppRole) error {
	rows, err := s.db.QueryContext(ctx, `
		select permission from app_role_permissions where role_id = $1 order by permission
	`, role.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var p policy.Permission
		if err := rows.Scan(&p); err != nil {
			return err
		}
		role.Permissions = append(role.Permissions, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	typeRows, err := s.db.QueryContext(ctx, `
		select user_type from app_role_user_types where role_id = $1 order by user_type
	`, role.ID)
	if err != nil {
		return err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var t policy.UserType
		if err := typeRows.Scan(&t); err != nil {
			return err
		}
		role.UserTypeRestriction = append(role.UserTypeRestriction, t)
	}
	return typeRows.Err()
}
