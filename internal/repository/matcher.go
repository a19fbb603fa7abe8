package repository

import (
	"sort"
	"strings"

	"github.com/o-c-foundation/Cosmic-Synched-Chains-sub002/internal/models"
)

// In-process filtering for backends that cannot push predicates down.

func (f UserFilter) matches(u *models.User) bool {
	if f.Role != "" && u.Role != f.Role {
		return false
	}
	if f.Active != nil && u.IsActive != *f.Active {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(u.Name), q) &&
			!strings.Contains(strings.ToLower(u.Email), q) &&
			!strings.Contains(strings.ToLower(u.Company), q) {
			return false
		}
	}
	return true
}

func (f NetworkFilter) matches(n *models.Network) bool {
	if f.Status != "" && n.Status != f.Status {
		return false
	}
	if f.DeploymentType != "" && n.DeploymentType != f.DeploymentType {
		return false
	}
	if f.Owner != "" && n.Owner != f.Owner {
		return false
	}
	if f.CreatedSince != nil && n.CreatedAt.Before(*f.CreatedSince) {
		return false
	}
	return true
}

func (f LogFilter) matches(l *models.SystemLog) bool {
	if f.Level != "" && l.Level != f.Level {
		return false
	}
	if f.Source != "" && l.Source != f.Source {
		return false
	}
	if f.Resolved != nil && l.Resolved != *f.Resolved {
		return false
	}
	if f.UserID != "" && l.UserID != f.UserID {
		return false
	}
	if f.NetworkID != "" && l.NetworkID != f.NetworkID {
		return false
	}
	if f.Since != nil && l.Timestamp.Before(*f.Since) {
		return false
	}
	return true
}

// page applies skip and limit to an already sorted slice.
func page[T any](items []T, skip, limit int) []T {
	if skip >= len(items) {
		return []T{}
	}
	if skip > 0 {
		items = items[skip:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func sortUsers(users []models.User) {
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
}

func sortNetworks(networks []models.Network) {
	sort.SliceStable(networks, func(i, j int) bool { return networks[i].CreatedAt.After(networks[j].CreatedAt) })
}

func sortLogs(logs []models.SystemLog) {
	sort.SliceStable(logs, func(i, j int) bool { return logs[i].Timestamp.After(logs[j].Timestamp) })
}
