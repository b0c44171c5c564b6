package directory

import (
	"errors"
	"strings"
	"testing"

	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

func newTestDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := New([]string{"Red", "Blue"}, []string{"Busy", "Free"})
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}
	return d
}

func TestNewRejectsBadConfigurations(t *testing.T) {
	if _, err := New(nil, []string{"Busy"}); err == nil {
		t.Fatalf("expected error for zero teams")
	}
	if _, err := New(make([]string, MaxTeamCount+1), []string{"Busy"}); err == nil {
		t.Fatalf("expected error for too many teams")
	}
	if _, err := New([]string{"Red"}, []string{strings.Repeat("x", 17)}); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
	if _, err := New([]string{"Bad!Name"}, []string{"Busy"}); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
}

func TestCreateUserAssignsSequentialIDs(t *testing.T) {
	d := newTestDirectory(t)

	alice, err := d.CreateUser("Alice")
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := d.CreateUser("Bob")
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	if alice.NetID() != 0 || bob.NetID() != 1 {
		t.Fatalf("ids not sequential: alice=%d bob=%d", alice.NetID(), bob.NetID())
	}
	if d.LookupUser(0) != alice || d.LookupUser(1) != bob {
		t.Fatalf("net id does not resolve to its user")
	}
	if d.LookupUser(2) != nil {
		t.Fatalf("out-of-range lookup must return nil")
	}
	if d.UserCount() != 2 {
		t.Fatalf("user count: got %d", d.UserCount())
	}
}

func TestCreateUserRejectsInvalidName(t *testing.T) {
	d := newTestDirectory(t)
	if _, err := d.CreateUser("no#good"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected ErrInvalidIdentifier, got %v", err)
	}
	if d.UserCount() != 0 {
		t.Fatalf("rejected name must not consume an id")
	}
}

func TestSetStatusAndTeamValidation(t *testing.T) {
	d := newTestDirectory(t)
	u, _ := d.CreateUser("Alice")

	if err := d.SetStatusAndTeam(u, MaxStatusCount, 0); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if err := d.SetStatusAndTeam(u, 0, 2); !errors.Is(err, ErrInvalidTeam) {
		t.Fatalf("expected ErrInvalidTeam, got %v", err)
	}
	// Sigils are always acceptable.
	if err := d.SetStatusAndTeam(u, wire.InactiveStatus, wire.TeamWildcard); err != nil {
		t.Fatalf("sigil update: %v", err)
	}
}

// memberships returns the teams whose slot arrays hold the given net ID.
func memberships(t *testing.T, d *Directory, netID uint32) []byte {
	t.Helper()
	var teams []byte
	for id := 0; id < len(d.teams); id++ {
		names, _, err := d.TeamStatusView(byte(id))
		if err != nil {
			t.Fatalf("team view: %v", err)
		}
		for slot := range names {
			if d.teams[id].users[slot] != nil && d.teams[id].users[slot].netID == netID {
				teams = append(teams, byte(id))
			}
		}
	}
	return teams
}

func TestTeamMembershipInvariant(t *testing.T) {
	d := newTestDirectory(t)
	u, _ := d.CreateUser("Alice")

	steps := []struct {
		status, team byte
	}{
		{1, 0},
		{0, 0},
		{0, 1},
		{1, wire.TeamWildcard},
		{1, 1},
	}
	for _, step := range steps {
		if err := d.SetStatusAndTeam(u, step.status, step.team); err != nil {
			t.Fatalf("update to team %d: %v", step.team, err)
		}
		got := memberships(t, d, u.NetID())
		if step.team == wire.TeamWildcard {
			if len(got) != 0 {
				t.Fatalf("wildcard team but member of %v", got)
			}
		} else if len(got) != 1 || got[0] != step.team {
			t.Fatalf("expected sole membership in team %d, got %v", step.team, got)
		}
		if u.teamID != step.team || u.status != step.status {
			t.Fatalf("recorded fields diverge: team=%d status=%d", u.teamID, u.status)
		}
	}
}

func TestStatusUpdateIsIdempotent(t *testing.T) {
	d := newTestDirectory(t)
	u, _ := d.CreateUser("Alice")

	apply := func() ([]string, []byte) {
		if err := d.SetStatusAndTeam(u, 1, 0); err != nil {
			t.Fatalf("update: %v", err)
		}
		names, statuses, err := d.TeamStatusView(0)
		if err != nil {
			t.Fatalf("view: %v", err)
		}
		return names, statuses
	}

	names1, statuses1 := apply()
	names2, statuses2 := apply()
	for i := range names1 {
		if names1[i] != names2[i] || statuses1[i] != statuses2[i] {
			t.Fatalf("duplicate update changed observable state at slot %d", i)
		}
	}
}

func TestDuplicateTeamAddIsNoOp(t *testing.T) {
	d := newTestDirectory(t)
	u, _ := d.CreateUser("Alice")
	if err := d.SetStatusAndTeam(u, 0, 0); err != nil {
		t.Fatalf("join: %v", err)
	}
	if idx := d.teams[0].add(u); idx != -1 {
		t.Fatalf("duplicate add must be rejected, got slot %d", idx)
	}
	if got := memberships(t, d, u.NetID()); len(got) != 1 {
		t.Fatalf("expected one membership, got %v", got)
	}
}

func TestTeamStatusViewVacantSlots(t *testing.T) {
	d := newTestDirectory(t)
	u, _ := d.CreateUser("Alice")
	_ = d.SetStatusAndTeam(u, 1, 0)

	names, statuses, err := d.TeamStatusView(0)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(names) != TeamCapacity || len(statuses) != TeamCapacity {
		t.Fatalf("view not sized to capacity: %d/%d", len(names), len(statuses))
	}
	found := false
	for i := range names {
		if names[i] == "Alice" {
			found = true
			if statuses[i] != 1 {
				t.Fatalf("status vector out of step with names at slot %d", i)
			}
			continue
		}
		if names[i] != "" || statuses[i] != wire.InactiveStatus {
			t.Fatalf("vacant slot %d not empty/inactive: %q %d", i, names[i], statuses[i])
		}
	}
	if !found {
		t.Fatalf("member missing from view")
	}
}

func TestSnapshotCopiesState(t *testing.T) {
	d := newTestDirectory(t)
	u, _ := d.CreateUser("Alice")
	_ = d.SetStatusAndTeam(u, 0, 1)

	teams, users := d.Snapshot()
	if len(teams) != 2 || len(users) != 1 {
		t.Fatalf("snapshot shape: %d teams %d users", len(teams), len(users))
	}
	if users[0].Name != "Alice" || users[0].TeamID != 1 || users[0].Status != 0 {
		t.Fatalf("user snapshot mismatch: %+v", users[0])
	}
	if len(teams[1].Members) != 1 || teams[1].Members[0].NetID != 0 {
		t.Fatalf("team snapshot mismatch: %+v", teams[1])
	}
}
