package aggregates

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	domainagg "github.com/yungbote/gymflow-backend/internal/domain/aggregates"
	"gorm.io/gorm"
)

func TestMapError_Validation(t *testing.T) {
	err := MapError("op", ValidationError("bad input"))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_Conflict(t *testing.T) {
	err := MapError("op", ConflictError("stale"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_NotFound(t *testing.T) {
	err := MapError("op", gorm.ErrRecordNotFound)
	if !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found code, got %q (%v)", domainagg.CodeOf(err), err)
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeRetryable, "op", "retry", errors.New("boom"))
	out := MapError("other", in)
	if out != in {
		t.Fatalf("expected passthrough aggregate error")
	}
}

func TestMapError_PostgresCodes(t *testing.T) {
	cases := []struct {
		code string
		want domainagg.ErrorCode
	}{
		{"23505", domainagg.CodeConflict},
		{"23503", domainagg.CodePreconditionFailed},
		{"40001", domainagg.CodeRetryable},
		{"40P01", domainagg.CodeRetryable},
		{"55P03", domainagg.CodeRetryable},
		{"42P01", domainagg.CodeInternal},
	}
	for _, tc := range cases {
		err := MapError("op", &pgconn.PgError{Code: tc.code, Message: "pg"})
		if !domainagg.IsCode(err, tc.want) {
			t.Fatalf("sqlstate %s: want=%s got=%s", tc.code, tc.want, domainagg.CodeOf(err))
		}
	}
}

func TestMapError_SQLiteUniqueIsConflict(t *testing.T) {
	err := MapError("op", errors.New("UNIQUE constraint failed: contract.person_id"))
	if !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("expected conflict code, got %q", domainagg.CodeOf(err))
	}
}

func TestMapError_UnwrapsNestedAggregateError(t *testing.T) {
	in := domainagg.NewError(domainagg.CodeNotFound, "inner", "person", nil)
	out := MapError("outer", fmt.Errorf("wrapped: %w", in))
	if !domainagg.IsCode(out, domainagg.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", out)
	}
}

func TestIsCodeCollision(t *testing.T) {
	if !isCodeCollision(errors.New("UNIQUE constraint failed: contract.code")) {
		t.Fatalf("sqlite code collision not detected")
	}
	if !isCodeCollision(&pgconn.PgError{Code: "23505", ConstraintName: "ux_contract_code"}) {
		t.Fatalf("postgres code collision not detected")
	}
	if isCodeCollision(&pgconn.PgError{Code: "23505", ConstraintName: "ux_contract_person_open"}) {
		t.Fatalf("open-contract violation is not a code collision")
	}
	if isCodeCollision(errors.New("UNIQUE constraint failed: contract.person_id")) {
		t.Fatalf("person violation is not a code collision")
	}
}
