// Package directory holds the server's in-memory registry of teams and
// users. All state lives for the lifetime of the process: teams are fixed
// at construction and user records are never reclaimed.
package directory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/teamconnect/teamconnect/internal/protocol/ident"
	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

const (
	// MaxTeamCount bounds the number of teams; team IDs must fit in a byte
	// with 0xff reserved for "no team".
	MaxTeamCount = 20
	// MaxStatusCount bounds the number of status options; status codes must
	// fit in a byte with 0xff reserved for "no status".
	MaxStatusCount = 20
	// TeamCapacity is the fixed number of member slots per team.
	TeamCapacity = 50
)

var (
	ErrInvalidIdentifier = errors.New("directory: invalid identifier")
	ErrCapacityExceeded  = errors.New("directory: user limit reached")
	ErrInvalidStatus     = errors.New("directory: invalid status")
	ErrInvalidTeam       = errors.New("directory: invalid team")
)

// User is one registered identity. The network ID is assigned once and
// doubles as the user's index in the directory; team and status change
// over time. Fields are guarded by the owning Directory's lock.
type User struct {
	netID  uint32
	name   string
	status byte
	teamID byte
}

func (u *User) NetID() uint32 { return u.netID }
func (u *User) Name() string  { return u.name }

// team is a fixed-capacity slot array of members. A nil slot is vacant;
// slot index carries no meaning beyond stable position.
type team struct {
	users [TeamCapacity]*User
}

// add places u in the first vacant slot and returns its index, or -1 when
// the team is full. Adding a network ID already present is a no-op, which
// keeps duplicate requests harmless.
func (t *team) add(u *User) int {
	free := -1
	for i, member := range t.users {
		if member != nil && member.netID == u.netID {
			return -1
		}
		if free < 0 && member == nil {
			free = i
		}
	}
	if free < 0 {
		return -1
	}
	t.users[free] = u
	return free
}

// remove vacates the slot holding u's network ID and reports whether the
// user was a member at all.
func (t *team) remove(u *User) bool {
	for i, member := range t.users {
		if member != nil && member.netID == u.netID {
			t.users[i] = nil
			return true
		}
	}
	return false
}

func (t *team) names() []string {
	names := make([]string, TeamCapacity)
	for i, member := range t.users {
		if member != nil {
			names[i] = member.name
		}
	}
	return names
}

func (t *team) statusVector() []byte {
	vec := make([]byte, TeamCapacity)
	for i, member := range t.users {
		if member == nil {
			vec[i] = wire.InactiveStatus
		} else {
			vec[i] = member.status
		}
	}
	return vec
}

// Directory is the registry. The UDP loop is the sole mutator; the lock
// exists so the admin endpoint can take consistent read snapshots from its
// own goroutines.
type Directory struct {
	mu          sync.RWMutex
	teams       []*team
	teamNames   []string
	statusNames []string
	users       []*User
}

// New builds a directory hosting the given teams and status options. Both
// lists are fixed for the directory's lifetime.
func New(teamNames, statusNames []string) (*Directory, error) {
	if len(teamNames) < 1 || len(teamNames) > MaxTeamCount {
		return nil, fmt.Errorf("directory: between 1 and %d teams supported, got %d", MaxTeamCount, len(teamNames))
	}
	if len(statusNames) < 1 || len(statusNames) > MaxStatusCount {
		return nil, fmt.Errorf("directory: between 1 and %d statuses supported, got %d", MaxStatusCount, len(statusNames))
	}
	for _, name := range teamNames {
		if !ident.IsValid(name) {
			return nil, fmt.Errorf("%w: team name %q", ErrInvalidIdentifier, name)
		}
	}
	for _, name := range statusNames {
		if !ident.IsValid(name) {
			return nil, fmt.Errorf("%w: status name %q", ErrInvalidIdentifier, name)
		}
	}

	teams := make([]*team, len(teamNames))
	for i := range teams {
		teams[i] = &team{}
	}
	return &Directory{
		teams:       teams,
		teamNames:   append([]string(nil), teamNames...),
		statusNames: append([]string(nil), statusNames...),
	}, nil
}

// CreateUser registers a new identity with the next sequential network ID,
// on no team and inactive. IDs are never reused, so creation fails once
// the next ID would reach the limit a header can carry.
func (d *Directory) CreateUser(name string) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if uint32(len(d.users)) >= wire.NetworkIDLimit {
		return nil, ErrCapacityExceeded
	}
	if !ident.IsValid(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	u := &User{
		netID:  uint32(len(d.users)),
		name:   name,
		status: wire.InactiveStatus,
		teamID: wire.TeamWildcard,
	}
	d.users = append(d.users, u)
	return u, nil
}

// LookupUser resolves a network ID to its user, or nil when no such user
// has been created. Out-of-range is "not found", never an error.
func (d *Directory) LookupUser(netID uint32) *User {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if netID >= uint32(len(d.users)) {
		return nil
	}
	return d.users[netID]
}

// SetStatusAndTeam records a user's new status and team. Moving between
// teams vacates the old slot and claims the first free slot of the new
// team; the recorded fields are updated regardless of slot mutation, so
// reapplying the same update is idempotent.
func (d *Directory) SetStatusAndTeam(u *User, status, teamID byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if status >= MaxStatusCount && status != wire.InactiveStatus {
		return fmt.Errorf("%w: %d", ErrInvalidStatus, status)
	}
	if int(teamID) >= len(d.teams) && teamID != wire.TeamWildcard {
		return fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}

	u.status = status

	old := u.teamID
	if teamID != old && old != wire.TeamWildcard {
		d.teams[old].remove(u)
	}
	if teamID != old && teamID != wire.TeamWildcard {
		d.teams[teamID].add(u)
	}
	u.teamID = teamID
	return nil
}

// TeamStatusView returns the team's member names and statuses as parallel
// slices sized to the fixed slot capacity. Vacant slots yield an empty
// name and the inactive sigil.
func (d *Directory) TeamStatusView(teamID byte) (names []string, statuses []byte, err error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if int(teamID) >= len(d.teams) {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidTeam, teamID)
	}
	t := d.teams[teamID]
	return t.names(), t.statusVector(), nil
}

// Description returns the fixed team and status name lists.
func (d *Directory) Description() (teamNames, statusNames []string) {
	return d.teamNames, d.statusNames
}

// UserCount returns how many identities have been created so far.
func (d *Directory) UserCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.users)
}

// UserInfo is a read-only copy of one user record.
type UserInfo struct {
	NetID  uint32 `json:"net_id"`
	Name   string `json:"name"`
	Status byte   `json:"status"`
	TeamID byte   `json:"team_id"`
}

// TeamInfo is a read-only view of one team's occupied slots.
type TeamInfo struct {
	ID      byte       `json:"id"`
	Name    string     `json:"name"`
	Members []UserInfo `json:"members"`
}

// Snapshot copies the full registry state for the admin surface.
func (d *Directory) Snapshot() (teams []TeamInfo, users []UserInfo) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users = make([]UserInfo, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, UserInfo{NetID: u.netID, Name: u.name, Status: u.status, TeamID: u.teamID})
	}
	teams = make([]TeamInfo, 0, len(d.teams))
	for id, t := range d.teams {
		info := TeamInfo{ID: byte(id), Name: d.teamNames[id], Members: []UserInfo{}}
		for _, member := range t.users {
			if member != nil {
				info.Members = append(info.Members, UserInfo{
					NetID:  member.netID,
					Name:   member.name,
					Status: member.status,
					TeamID: member.teamID,
				})
			}
		}
		teams = append(teams, info)
	}
	return teams, users
}
