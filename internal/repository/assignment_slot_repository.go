package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/kelasops-backend/internal/model"
)

// AssignmentSlotRepository handles assignment slot data access.
type AssignmentSlotRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentSlotRepository creates a new AssignmentSlotRepository.
func NewAssignmentSlotRepository(pool *pgxpool.Pool) *AssignmentSlotRepository {
	return &AssignmentSlotRepository{pool: pool}
}

const slotColumns = `id, grade, subject, slot_name, weekdays, time_start, time_end,
	duration_minutes, capacity, curriculum, batch_start, batch_end,
	classification, status, teacher_id, mentor_id, created_at, updated_at`

// GetByID retrieves an assignment slot by its ID.
func (r *AssignmentSlotRepository) GetByID(ctx context.Context, id int) (*model.AssignmentSlot, error) {
	s := &model.AssignmentSlot{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+slotColumns+` FROM assignment_slots WHERE id = $1`, id,
	).Scan(&s.ID, &s.Grade, &s.Subject, &s.SlotName, &s.Weekdays, &s.TimeStart, &s.TimeEnd,
		&s.DurationMinutes, &s.Capacity, &s.Curriculum, &s.BatchStart, &s.BatchEnd,
		&s.Classification, &s.Status, &s.TeacherID, &s.MentorID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List retrieves assignment slots, optionally filtered by grade, status and
// classification. Empty filter values match everything.
func (r *AssignmentSlotRepository) List(ctx context.Context, grade string, status model.SlotStatus, classification model.Classification) ([]model.AssignmentSlot, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+slotColumns+` FROM assignment_slots
		 WHERE ($1 = '' OR grade = $1)
		   AND ($2 = '' OR status = $2)
		   AND ($3 = '' OR classification = $3)
		 ORDER BY grade, slot_name, id`,
		grade, string(status), string(classification))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []model.AssignmentSlot
	for rows.Next() {
		var s model.AssignmentSlot
		if err := rows.Scan(&s.ID, &s.Grade, &s.Subject, &s.SlotName, &s.Weekdays, &s.TimeStart, &s.TimeEnd,
			&s.DurationMinutes, &s.Capacity, &s.Curriculum, &s.BatchStart, &s.BatchEnd,
			&s.Classification, &s.Status, &s.TeacherID, &s.MentorID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

// ListSlotKeys returns the distinct (grade, slot name) pairs covered by any
// assignment slot. Used by the unmatched report.
func (r *AssignmentSlotRepository) ListSlotKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT grade, slot_name FROM assignment_slots`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var grade, slotName string
		if err := rows.Scan(&grade, &slotName); err != nil {
			return nil, err
		}
		keys[grade+"\x00"+slotName] = struct{}{}
	}
	return keys, rows.Err()
}

// Create inserts a new assignment slot.
func (r *AssignmentSlotRepository) Create(ctx context.Context, s *model.AssignmentSlot) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO assignment_slots
			(grade, subject, slot_name, weekdays, time_start, time_end,
			 duration_minutes, capacity, curriculum, batch_start, batch_end,
			 classification, status, teacher_id, mentor_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		 RETURNING id, created_at, updated_at`,
		s.Grade, s.Subject, s.SlotName, s.Weekdays, s.TimeStart, s.TimeEnd,
		s.DurationMinutes, s.Capacity, s.Curriculum, s.BatchStart, s.BatchEnd,
		s.Classification, s.Status, s.TeacherID, s.MentorID,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

// Update modifies an existing assignment slot.
func (r *AssignmentSlotRepository) Update(ctx context.Context, s *model.AssignmentSlot) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignment_slots SET
			grade = $1, subject = $2, slot_name = $3, weekdays = $4,
			time_start = $5, time_end = $6, duration_minutes = $7, capacity = $8,
			curriculum = $9, batch_start = $10, batch_end = $11,
			classification = $12, status = $13, teacher_id = $14, mentor_id = $15,
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = $16`,
		s.Grade, s.Subject, s.SlotName, s.Weekdays, s.TimeStart, s.TimeEnd,
		s.DurationMinutes, s.Capacity, s.Curriculum, s.BatchStart, s.BatchEnd,
		s.Classification, s.Status, s.TeacherID, s.MentorID, s.ID,
	)
	return err
}

// UpdateStatus changes only the lifecycle status of a slot.
func (r *AssignmentSlotRepository) UpdateStatus(ctx context.Context, id int, status model.SlotStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignment_slots SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		status, id)
	return err
}

// UpdateTeacher changes only the assigned teacher of a slot. A nil teacherID
// clears the assignment.
func (r *AssignmentSlotRepository) UpdateTeacher(ctx context.Context, id int, teacherID *int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignment_slots SET teacher_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		teacherID, id)
	return err
}

// UpdateMentor changes only the assigned mentor of a slot.
func (r *AssignmentSlotRepository) UpdateMentor(ctx context.Context, id int, mentorID *int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE assignment_slots SET mentor_id = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		mentorID, id)
	return err
}

// Delete removes an assignment slot by its ID.
func (r *AssignmentSlotRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM assignment_slots WHERE id = $1`, id)
	return err
}
