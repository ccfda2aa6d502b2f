package models

import "time"

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	CreatedByID string    `json:"createdById,omitempty"`
	Members     []User    `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Project) HasMember(userID string) bool {
	return indexOfUser(p.Members, userID) >= 0
}

// AddMember appends u unless a member with the same id is already present.
// It reports whether the set changed.
func (p *Project) AddMember(u User) bool {
	if p.HasMember(u.ID) {
		return false
	}
	p.Members = append(p.Members, u)
	return true
}

// RemoveMember drops the member with userID. Removing a non-member is a no-op.
func (p *Project) RemoveMember(userID string) bool {
	var removed bool
	p.Members, removed = removeUser(p.Members, userID)
	return removed
}

func (p Project) MemberIDs() []string {
	return userIDs(p.Members)
}

func indexOfUser(users []User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

func removeUser(users []User, id string) ([]User, bool) {
	i := indexOfUser(users, id)
	if i < 0 {
		return users, false
	}
	return append(users[:i:i], users[i+1:]...), true
}

func userIDs(users []User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
