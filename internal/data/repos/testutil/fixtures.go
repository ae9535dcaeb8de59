package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/gymflow-backend/internal/domain"
)

var emailSeq atomic.Int64

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, active bool) *types.User {
	tb.Helper()
	n := emailSeq.Add(1)
	u := &types.User{
		Email:     fmt.Sprintf("user%d@example.com", n),
		FirstName: "User",
		LastName:  fmt.Sprintf("%d", n),
		Active:    active,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedPerson creates a client; withAccount links a fresh active user.
func SeedPerson(tb testing.TB, ctx context.Context, tx *gorm.DB, withAccount bool) *types.Person {
	tb.Helper()
	p := &types.Person{FirstName: "Client", LastName: "Person"}
	if withAccount {
		u := SeedUser(tb, ctx, tx, true)
		p.UserID = &u.ID
		p.Email = u.Email
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed person: %v", err)
	}
	return p
}

// SeedTrainer creates a trainer user plus profile with the given activity flags.
func SeedTrainer(tb testing.TB, ctx context.Context, tx *gorm.DB, userActive, profileActive bool) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, userActive)
	tr := &types.Trainer{UserID: u.ID, Specialty: "strength", Active: profileActive}
	if err := tx.WithContext(ctx).Create(tr).Error; err != nil {
		tb.Fatalf("seed trainer: %v", err)
	}
	return u
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, price float64, validityDays int) *types.MembershipPlan {
	tb.Helper()
	p := &types.MembershipPlan{
		Name:         fmt.Sprintf("%d-day plan", validityDays),
		Price:        price,
		ValidityDays: validityDays,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}

// SeedContract inserts a contract row directly, bypassing the aggregate.
func SeedContract(tb testing.TB, ctx context.Context, tx *gorm.DB, personID, planID, actorID uint, code string, status types.ContractStatus, start, end time.Time) *types.Contract {
	tb.Helper()
	c := &types.Contract{
		Code:             code,
		PersonID:         personID,
		MembershipPlanID: planID,
		StartDate:        datatypes.Date(start),
		EndDate:          datatypes.Date(end),
		SnapshottedPrice: 10,
		Status:           string(status),
		CreatedBy:        actorID,
	}
	if err := tx.WithContext(ctx).Omit("Person", "Plan", "Creator", "Updater", "History").Create(c).Error; err != nil {
		tb.Fatalf("seed contract: %v", err)
	}
	return c
}

func SeedSession(tb testing.TB, ctx context.Context, tx *gorm.DB, trainerID, clientID uint, start, end time.Time, status types.SessionStatus) *types.TrainingSession {
	tb.Helper()
	s := &types.TrainingSession{
		Title:     "session",
		StartTime: start.UTC(),
		EndTime:   end.UTC(),
		TrainerID: trainerID,
		ClientID:  clientID,
		Status:    string(status),
	}
	if err := tx.WithContext(ctx).Omit("Trainer", "Client").Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}
