package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"silas.org/internal/admin"
	"silas.org/internal/policy"
)

const profileColumns = `
	p.id, p.user_type, p.active, p.firm_id,
	u.id, u.name, u.email, u.enabled, u.multi_firm, u.created_at, u.updated_at
`

func (s *Store) CreateUser(ctx context.Context, user policy.User, profile policy.Profile) (policy.Profile, error) {
	if s.db == nil {
		return policy.Profile{}, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return policy.Profile{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		insert into users (id, name, email, enabled, multi_firm)
		values ($1, $2, $3, $4, $5)
		returning created_at, updated_at
	`, user.ID, user.Name, user.Email, user.Enabled, user.MultiFirm)
	if err := row.Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return policy.Profile{}, policy.ErrConflict
		}
		return policy.Profile{}, err
	}

	var firmID sql.NullString
	if profile.Firm != nil {
		firmID = sql.NullString{String: profile.Firm.ID, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		insert into profiles (id, user_id, user_type, firm_id, active)
		values ($1, $2, $3, $4, $5)
	`, profile.ID, user.ID, profile.UserType, firmID, profile.Active); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return policy.Profile{}, policy.ErrConflict
			case pgErrForeignKeyViolation:
				return policy.Profile{}, policy.ErrNotFound
			}
		}
		return policy.Profile{}, err
	}
	for _, office := range profile.Offices {
		if _, err := tx.ExecContext(ctx, `
			insert into profile_offices (profile_id, office_id)
			values ($1, $2)
		`, profile.ID, office.ID); err != nil {
			return policy.Profile{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return policy.Profile{}, err
	}

	profile.User = user
	return profile, nil
}

func (s *Store) AddProfile(ctx context.Context, userID string, profile policy.Profile) (policy.Profile, error) {
	if s.db == nil {
		return policy.Profile{}, errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return policy.Profile{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var firmID sql.NullString
	if profile.Firm != nil {
		firmID = sql.NullString{String: profile.Firm.ID, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		insert into profiles (id, user_id, user_type, firm_id, active)
		values ($1, $2, $3, $4, $5)
	`, profile.ID, userID, profile.UserType, firmID, profile.Active); err != nil {
		if pgErr, ok := maybePgError(err); ok {
			switch pgErr.Code {
			case pgErrUniqueViolation:
				return policy.Profile{}, policy.ErrConflict
			case pgErrForeignKeyViolation:
				return policy.Profile{}, policy.ErrNotFound
			}
		}
		return policy.Profile{}, err
	}
	for _, office := range profile.Offices {
		if _, err := tx.ExecContext(ctx, `
			insert into profile_offices (profile_id, office_id)
			values ($1, $2)
		`, profile.ID, office.ID); err != nil {
			return policy.Profile{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return policy.Profile{}, err
	}

	return s.GetProfile(ctx, profile.ID)
}

func (s *Store) GetProfile(ctx context.Context, profileID string) (policy.Profile, error) {
	if s.db == nil {
		return policy.Profile{}, errors.New("database connection unavailable")
	}
	row := s.db.QueryRowContext(ctx, `
		select `+profileColumns+`
		from profiles p
		join users u on u.id = p.user_id
		where p.id = $1
	`, profileID)

	profile, firmID, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return policy.Profile{}, policy.ErrNotFound
	}
	if err != nil {
		return policy.Profile{}, err
	}
	if err := s.loadProfileDetails(ctx, &profile, firmID); err != nil {
		return policy.Profile{}, err
	}
	return profile, nil
}

func (s *Store) ListProfiles(ctx context.Context, filter admin.ProfileFilter) ([]policy.Profile, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	var (
		where []string
		args  []any
		idx   = 1
	)
	if filter.FirmID != "" {
		where = append(where, fmt.Sprintf("p.firm_id = $%d", idx))
		args = append(args, filter.FirmID)
		idx++
	}
	if filter.UserType != "" {
		where = append(where, fmt.Sprintf("p.user_type = $%d", idx))
		args = append(args, filter.UserType)
		idx++
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, fmt.Sprintf("(u.name ilike $%d or u.email ilike $%d)", idx, idx))
		args = append(args, "%"+q+"%")
		idx++
	}
	query := `
		select ` + profileColumns + `
		from profiles p
		join users u on u.id = p.user_id
	`
	if len(where) > 0 {
		query += " where " + strings.Join(where, " and ")
	}
	query += " order by u.name"
	return s.queryProfiles(ctx, query, args...)
}

func (s *Store) ProfilesForUser(ctx context.Context, userID string) ([]policy.Profile, error) {
	if s.db == nil {
		return nil, errors.New("database connection unavailable")
	}
	return s.queryProfiles(ctx, `
		select `+profileColumns+`
		from profiles p
		join users u on u.id = p.user_id
		where u.id = $1
		order by p.id
	`, userID)
}

func (s *Store) DeleteProfile(ctx context.Context, profileID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	// Role and office links go with the profile via the deletion cascade.
	res, err := s.db.ExecContext(ctx, `delete from profiles where id = $1`, profileID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return policy.ErrNotFound
	}
	return nil
}

func (s *Store) AddProfileRole(ctx context.Context, profileID, roleID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if _, err := s.db.ExecContext(ctx, `
		insert into profile_app_roles (profile_id, role_id)
		values ($1, $2)
		on conflict do nothing
	`, profileID, roleID); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return policy.ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Store) RemoveProfileRole(ctx context.Context, profileID, roleID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		delete from profile_app_roles
		where profile_id = $1 and role_id = $2
	`, profileID, roleID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return policy.ErrNotFound
	}
	return nil
}

func (s *Store) SetProfileOffices(ctx context.Context, profileID string, officeIDs []string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, `select 1 from profiles where id = $1`, profileID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return policy.ErrNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx, `delete from profile_offices where profile_id = $1`, profileID); err != nil {
		return err
	}
	for _, officeID := range officeIDs {
		if _, err := tx.ExecContext(ctx, `
			insert into profile_offices (profile_id, office_id)
			values ($1, $2)
		`, profileID, officeID); err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
				return policy.ErrNotFound
			}
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ReassignProfileFirm(ctx context.Context, profileID, firmID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		update profiles set firm_id = $2, updated_at = now()
		where id = $1
	`, profileID, firmID)
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
	// Offices are firm-scoped and never carry over to the new firm.
	if _, err := tx.ExecContext(ctx, `delete from profile_offices where profile_id = $1`, profileID); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) SwitchActiveProfile(ctx context.Context, userID, profileID string) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		update profiles set active = false, updated_at = now()
		where user_id = $1 and active
	`, userID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		update profiles set active = true, updated_at = now()
		where id = $1 and user_id = $2
	`, profileID, userID)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return policy.ErrNotFound
	}
	return tx.Commit()
}

func (s *Store) SetUserEnabled(ctx context.Context, userID string, enabled bool) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update users set enabled = $2, updated_at = now()
		where id = $1
	`, userID, enabled)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return policy.ErrNotFound
	}
	return nil
}

func (s *Store) SetUserMultiFirm(ctx context.Context, userID string, multiFirm bool) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	res, err := s.db.ExecContext(ctx, `
		update users set multi_firm = $2, updated_at = now()
		where id = $1
	`, userID, multiFirm)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return policy.ErrNotFound
	}
	return nil
}

func (s *Store) AppendAudit(ctx context.Context, record *policy.AuditRecord) error {
	if s.db == nil {
		return errors.New("database connection unavailable")
	}
	if record == nil {
		return errors.New("audit record is required")
	}
	if _, err := s.db.ExecContext(ctx, `
		insert into status_audit (id, actor_profile_id, target_profile_id, old_status, new_status, reason_id, occurred_at)
		values ($1, $2, $3, $4, $5, $6, $7)
	`, record.ID, record.ActorID, record.TargetID, record.OldStatus, record.NewStatus, nullIfEmpty(record.ReasonID), record.OccurredAt); err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return policy.ErrNotFound
		}
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (policy.Profile, string, error) {
	var (
		p      policy.Profile
		firmID sql.NullString
	)
	err := row.Scan(
		&p.ID, &p.UserType, &p.Active, &firmID,
		&p.User.ID, &p.User.Name, &p.User.Email, &p.User.Enabled, &p.User.MultiFirm, &p.User.CreatedAt, &p.User.UpdatedAt,
	)
	if err != nil {
		return policy.Profile{}, "", err
	}
	if firmID.Valid {
		return p, firmID.String, nil
	}
	return p, "", nil
}

func (s *Store) queryProfiles(ctx context.Context, query string, args ...any) ([]policy.Profile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		profiles []policy.Profile
		firmIDs  []string
	)
	for rows.Next() {
		p, firmID, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
		firmIDs = append(firmIDs, firmID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range profiles {
		if err := s.loadProfileDetails(ctx, &profiles[i], firmIDs[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func (s *Store) loadProfileDetails(ctx context.Context, p *policy.Profile, firmID string) error {
	if firmID != "" {
		firm, err := s.firmByID(ctx, firmID)
		if err != nil {
			return err
		}
		p.Firm = &firm
	}

	offices, err := s.profileOffices(ctx, p.ID)
	if err != nil {
		return err
	}
	p.Offices = offices

	roles, err := s.profileRoles(ctx, p.ID)
	if err != nil {
		return err
	}
	p.AppRoles = roles
	return nil
}

func (s *Store) profileOffices(ctx context.Context, profileID string) ([]policy.Office, error) {
	rows, err := s.db.QueryContext(ctx, `
		select o.id, o.firm_id, o.name
		from profile_offices po
		join offices o on o.id = po.office_id
		where po.profile_id = $1
		order by o.name
	`, profileID)
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

func (s *Store) profileRoles(ctx context.Context, profileID string) ([]policy.AppRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		select r.id, r.app_id, r.name, r.authz_role, r.role_type
		from profile_app_roles pr
		join app_roles r on r.id = pr.role_id
		where pr.profile_id = $1
		order by r.name
	`, profileID)
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
