package aggregates

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	types "github.com/yungbote/gymflow-backend/internal/domain"
	"github.com/yungbote/gymflow-backend/internal/platform/dbctx"
)

const (
	contractCodePrefix   = "C"
	contractCodeWidth    = 4
	maxCodeAllocAttempts = 5
)

// nextContractCode derives the code after last. A non-numeric suffix falls back to maxID+1.
func nextContractCode(last string, maxID uint, bump int) string {
	n := 1
	last = strings.TrimSpace(last)
	if last != "" {
		suffix := strings.TrimPrefix(last, contractCodePrefix)
		if v, err := strconv.Atoi(suffix); err == nil && v >= 0 {
			n = v + 1
		} else {
			n = int(maxID) + 1
		}
	}
	return fmt.Sprintf("%s%0*d", contractCodePrefix, contractCodeWidth, n+bump)
}

// insertWithCode allocates the next code and inserts row inside a savepoint,
// retrying only when the code's unique index rejects the insert.
func (a *contractAggregate) insertWithCode(dbc dbctx.Context, row *types.Contract) error {
	t := dbc.Tx
	if t == nil {
		t = a.deps.Base.DB
	}
	var lastErr error
	for attempt := 0; attempt < maxCodeAllocAttempts; attempt++ {
		last, err := a.deps.Contracts.LastCode(dbc)
		if err != nil {
			return err
		}
		maxID, err := a.deps.Contracts.MaxID(dbc)
		if err != nil {
			return err
		}
		row.ID = 0
		row.Code = nextContractCode(last, maxID, attempt)

		err = t.WithContext(dbc.Ctx).Transaction(func(sp *gorm.DB) error {
			return a.deps.Contracts.Create(dbctx.Context{Ctx: dbc.Ctx, Tx: sp}, row)
		})
		if err == nil {
			return nil
		}
		if !isCodeCollision(err) {
			if IsUniqueViolation(err) {
				// Lost the race on ux_contract_person_open.
				return ConflictError("duplicate active contract")
			}
			return err
		}
		lastErr = err
		a.deps.Base.Log.Warn("contract code collision, retrying", "code", row.Code, "attempt", attempt+1)
	}
	return RetryableError(fmt.Sprintf("could not allocate contract code after %d attempts: %v", maxCodeAllocAttempts, lastErr))
}

func isCodeCollision(err error) bool {
	if !IsUniqueViolation(err) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName == "ux_contract_code"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "ux_contract_code") || strings.Contains(msg, "contract.code")
}
