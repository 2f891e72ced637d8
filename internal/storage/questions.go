package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/manthan/quizbot/internal/poll"
)

// QuestionRepository is a poll.RowStore backed by the questions table. The
// row number is the table's row_num.
type QuestionRepository struct {
	db *DB
}

func NewQuestionRepository(db *DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

var selectColumns = func() string {
	cols := []string{"row_num"}
	for _, c := range poll.DefaultHeaders {
		cols = append(cols, quoteIdent(string(c)))
	}
	return strings.Join(cols, ", ")
}()

func (r *QuestionRepository) Rows(ctx context.Context) ([]*poll.Question, error) {
	rows, err := r.db.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM questions ORDER BY row_num`)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	defer rows.Close()

	var questions []*poll.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (r *QuestionRepository) Row(ctx context.Context, row int) (*poll.Question, error) {
	q, err := scanQuestion(r.db.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM questions WHERE row_num = ?`, row))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("row %d: %w", row, poll.ErrRowNotFound)
	}
	return q, err
}

// UpdateCells writes the given cells of one row in a single statement.
func (r *QuestionRepository) UpdateCells(ctx context.Context, row int, cells poll.Record) error {
	if len(cells) == 0 {
		return nil
	}

	cols := make([]string, 0, len(cells))
	for col := range cells {
		cols = append(cols, string(col))
	}
	sort.Strings(cols)

	assignments := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		assignments[i] = quoteIdent(col) + " = ?"
		args = append(args, cells[poll.Column(col)])
	}
	args = append(args, row)

	res, err := r.db.db.ExecContext(ctx,
		`UPDATE questions SET `+strings.Join(assignments, ", ")+` WHERE row_num = ?`, args...)
	if err != nil {
		return fmt.Errorf("update row %d: %w", row, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("row %d: %w", row, poll.ErrRowNotFound)
	}
	return nil
}

// Insert appends a question row and returns its row number.
func (r *QuestionRepository) Insert(ctx context.Context, rec poll.Record) (int, error) {
	if len(rec) == 0 {
		res, err := r.db.db.ExecContext(ctx, `INSERT INTO questions DEFAULT VALUES`)
		if err != nil {
			return 0, fmt.Errorf("insert question: %w", err)
		}
		id, err := res.LastInsertId()
		return int(id), err
	}

	cols := make([]string, 0, len(rec))
	for col := range rec {
		cols = append(cols, string(col))
	}
	sort.Strings(cols)

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		placeholders[i] = "?"
		args[i] = rec[poll.Column(col)]
	}

	res, err := r.db.db.ExecContext(ctx,
		`INSERT INTO questions (`+strings.Join(quoted, ", ")+`) VALUES (`+strings.Join(placeholders, ", ")+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("insert question: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id: %w", err)
	}
	return int(id), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(s scanner) (*poll.Question, error) {
	var rowNum int
	values := make([]string, len(poll.DefaultHeaders))
	dest := make([]any, 0, len(values)+1)
	dest = append(dest, &rowNum)
	for i := range values {
		dest = append(dest, &values[i])
	}

	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan question: %w", err)
	}

	rec := make(poll.Record, len(values))
	for i, col := range poll.DefaultHeaders {
		rec[col] = values[i]
	}
	return poll.QuestionFromRecord(rowNum, rec), nil
}
