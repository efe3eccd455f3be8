package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestMapAttemptWriteError(t *testing.T) {
	uniqueViolation := &pgconn.PgError{Code: "23505", ConstraintName: "quiz_attempts_resource_id_user_id_key"}
	fkViolation := &pgconn.PgError{Code: "23503"}
	plain := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil passes through", nil, nil},
		{"unique violation maps", uniqueViolation, ErrAttemptExists},
		{"wrapped unique violation maps", fmt.Errorf("insert attempt: %w", uniqueViolation), ErrAttemptExists},
		{"other constraint passes through", fkViolation, fkViolation},
		{"plain error passes through", plain, plain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapAttemptWriteError(tt.err); !errors.Is(got, tt.want) {
				t.Errorf("mapAttemptWriteError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
