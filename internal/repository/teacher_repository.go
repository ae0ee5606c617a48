package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// TeacherRepository handles roster data access: teachers, their capability
// records and the precomputed utilization snapshot.
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

// GetByID retrieves a teacher by ID.
func (r *TeacherRepository) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	t := &model.Teacher{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, active, created_at, updated_at
		 FROM teachers WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.Email, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// List retrieves all teachers.
func (r *TeacherRepository) List(ctx context.Context) ([]model.Teacher, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, email, active, created_at, updated_at
		 FROM teachers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []model.Teacher
	for rows.Next() {
		var t model.Teacher
		if err := rows.Scan(&t.ID, &t.Name, &t.Email, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, t *model.Teacher) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO teachers (name, email, active)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		t.Name, t.Email, t.Active,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update modifies an existing teacher.
func (r *TeacherRepository) Update(ctx context.Context, t *model.Teacher) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE teachers SET name = $1, email = $2, active = $3, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $4`,
		t.Name, t.Email, t.Active, t.ID)
	return err
}

// Delete removes a teacher by ID.
func (r *TeacherRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM teachers WHERE id = $1`, id)
	return err
}

// ListCapabilities retrieves a teacher's capability rows.
func (r *TeacherRepository) ListCapabilities(ctx context.Context, teacherID int) ([]model.TeacherCapability, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, teacher_id, subject, grade, tier
		 FROM teacher_capabilities WHERE teacher_id = $1 ORDER BY subject, grade`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caps []model.TeacherCapability
	for rows.Next() {
		var c model.TeacherCapability
		if err := rows.Scan(&c.ID, &c.TeacherID, &c.Subject, &c.Grade, &c.Tier); err != nil {
			return nil, err
		}
		caps = append(caps, c)
	}
	return caps, rows.Err()
}

// AddCapability inserts a capability row for a teacher.
func (r *TeacherRepository) AddCapability(ctx context.Context, c *model.TeacherCapability) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO teacher_capabilities (teacher_id, subject, grade, tier)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		c.TeacherID, c.Subject, c.Grade, c.Tier,
	).Scan(&c.ID)
}

// DeleteCapability removes a capability row.
func (r *TeacherRepository) DeleteCapability(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM teacher_capabilities WHERE id = $1`, id)
	return err
}

// LoadRoster loads every active teacher's capability rows joined with the
// utilization snapshot for the given period, in stable (name, id) order.
// Teachers without a snapshot row count as 0% utilized.
func (r *TeacherRepository) LoadRoster(ctx context.Context, period string) ([]model.RosterEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT t.id, t.name, c.subject, c.grade, c.tier,
		        COALESCE(u.teaching_pct, 0), COALESCE(u.mentoring_pct, 0)
		 FROM teachers t
		 JOIN teacher_capabilities c ON c.teacher_id = t.id
		 LEFT JOIN teacher_utilization u ON u.teacher_id = t.id AND u.period = $1
		 WHERE t.active
		 ORDER BY t.name, t.id, c.id`, period)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roster []model.RosterEntry
	for rows.Next() {
		var e model.RosterEntry
		if err := rows.Scan(&e.TeacherID, &e.Name, &e.Subject, &e.Grade, &e.Tier,
			&e.TeachingPct, &e.MentoringPct); err != nil {
			return nil, err
		}
		roster = append(roster, e)
	}
	return roster, rows.Err()
}
