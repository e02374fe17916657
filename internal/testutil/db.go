package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/codr1/PickleLadder/internal/db"
	dbgen "github.com/codr1/PickleLadder/internal/db/generated"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// CreateUser inserts a user with a generated auth subject and the given names.
func CreateUser(t *testing.T, database *db.DB, firstName, lastName string, isAdmin bool) dbgen.User {
	t.Helper()

	ctx := context.Background()
	subject := fmt.Sprintf("sub-%s-%s", firstName, lastName)
	user, err := database.Queries.UpsertUserBySubject(ctx, dbgen.UpsertUserBySubjectParams{
		AuthSubject: subject,
		Email:       sql.NullString{String: subject + "@example.com", Valid: true},
	})
	if err != nil {
		t.Fatalf("create user %s: %v", subject, err)
	}
	user, err = database.Queries.UpdateUserProfile(ctx, dbgen.UpdateUserProfileParams{
		FirstName: firstName,
		LastName:  lastName,
		ID:        user.ID,
	})
	if err != nil {
		t.Fatalf("update user %s: %v", subject, err)
	}
	if isAdmin {
		if err := database.Queries.SetUserAdmin(ctx, dbgen.SetUserAdminParams{IsAdmin: true, ID: user.ID}); err != nil {
			t.Fatalf("promote user %s: %v", subject, err)
		}
		user.IsAdmin = true
	}
	return user
}

// CreateLadder inserts an active ladder without a season end.
func CreateLadder(t *testing.T, database *db.DB, name string) dbgen.Ladder {
	t.Helper()

	ladder, err := database.Queries.CreateLadder(context.Background(), dbgen.CreateLadderParams{Name: name})
	if err != nil {
		t.Fatalf("create ladder %s: %v", name, err)
	}
	return ladder
}

// AddMember enrolls userID at the bottom of the ladder.
func AddMember(t *testing.T, database *db.DB, ladderID, userID int64) dbgen.LadderMembership {
	t.Helper()

	ctx := context.Background()
	maxRank, err := database.Queries.GetMaxActiveRank(ctx, ladderID)
	if err != nil {
		t.Fatalf("max rank: %v", err)
	}
	membership, err := database.Queries.CreateMembership(ctx, dbgen.CreateMembershipParams{
		LadderID: ladderID,
		UserID:   userID,
		Rank:     sql.NullInt64{Int64: maxRank + 1, Valid: true},
	})
	if err != nil {
		t.Fatalf("add member %d to ladder %d: %v", userID, ladderID, err)
	}
	return membership
}

// SetScore overwrites a membership's score directly.
func SetScore(t *testing.T, database *db.DB, membershipID, score int64) {
	t.Helper()

	if _, err := database.ExecContext(context.Background(),
		"UPDATE ladder_memberships SET score = ? WHERE id = ?", score, membershipID); err != nil {
		t.Fatalf("set score: %v", err)
	}
}
