package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	"github.com/teamtasks/team-tasks-api/internal/domain/repository"
)

func itoa(n int) string { return strconv.Itoa(n) }

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

const taskColumns = `id, title, description, status, due_date, priority, assigned_to, created_by, created_at, updated_at`

func scanTask(row pgx.Row) (*entity.Task, error) {
	t := &entity.Task{}
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.DueDate,
		&t.Priority, &t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Create(t *entity.Task) error {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, due_date, priority, assigned_to, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, t.Title, t.Description, t.Status, t.DueDate, t.Priority, t.AssignedTo, t.CreatedBy)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (r *TaskRepository) GetByID(id string) (*entity.Task, error) {
	ctx := context.Background()
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// orderColumns whitelists client-supplied ordering keys.
var orderColumns = map[string]string{
	"created_at": "created_at",
	"due_date":   "due_date",
	"priority":   "priority",
}

func (r *TaskRepository) List(f repository.TaskFilter) ([]*entity.Task, error) {
	ctx := context.Background()

	q := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []any{}
	add := func(clause string, arg any) {
		args = append(args, arg)
		q += ` AND ` + clause + `$` + itoa(len(args))
	}

	if f.Status != nil {
		add(`status = `, *f.Status)
	}
	if f.AssignedTo != nil {
		add(`assigned_to = `, *f.AssignedTo)
	}
	if f.DueBefore != nil {
		add(`due_date < `, *f.DueBefore)
	}
	if f.DueAfter != nil {
		add(`due_date > `, *f.DueAfter)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := itoa(len(args))
		q += ` AND (title ILIKE $` + n + ` OR description ILIKE $` + n + `)`
	}
	if f.ScopeAssignedTo != nil {
		add(`assigned_to = `, *f.ScopeAssignedTo)
	}

	col, ok := orderColumns[f.OrderBy]
	if !ok {
		// Default listing order per the data model contract.
		col, f.Descending = "created_at", true
	}
	q += ` ORDER BY ` + col
	if f.Descending {
		q += ` DESC`
	}

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TaskRepository) Update(t *entity.Task) error {
	ctx := context.Background()
	t.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4,
		    priority = $5, assigned_to = $6, updated_at = $7
		WHERE id = $8
	`, t.Title, t.Description, t.Status, t.DueDate, t.Priority, t.AssignedTo, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperror.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(id string) error {
	ctx := context.Background()
	res, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return apperror.ErrTaskNotFound
	}
	return nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
