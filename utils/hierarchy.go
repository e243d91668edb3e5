package utils

import (
	"errors"

	"gorm.io/gorm"

	"bplcommander/models"
)

// The manager hierarchy is a forest: every non-top user has exactly one
// manager and cycles are forbidden. Acyclicity is a construction-time
// invariant checked here on every managerId assignment.

// DetectManagerCycle walks the manager chain from managerID upward through
// parents and reports whether it reaches userID. userID 0 means a brand-new
// user, which can never close a cycle.
func DetectManagerCycle(userID, managerID uint, parents map[uint]uint) bool {
	if userID == 0 {
		return false
	}
	for current := managerID; current != 0; {
		if current == userID {
			return true
		}
		next, ok := parents[current]
		if !ok {
			return false
		}
		current = next
	}
	return false
}

// ValidateManagerChain checks that managerID names an existing user and that
// assigning it to userID keeps the hierarchy acyclic.
func ValidateManagerChain(db *gorm.DB, userID, managerID uint) error {
	if userID != 0 && userID == managerID {
		return NewValidationError("A user cannot be their own manager")
	}

	var manager models.User
	if err := db.First(&manager, managerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewValidationError("Invalid manager ID")
		}
		return FromStoreError(err)
	}

	parents, err := managerParents(db)
	if err != nil {
		return err
	}
	if DetectManagerCycle(userID, managerID, parents) {
		return NewValidationError("Manager assignment would create a cycle")
	}
	return nil
}

// managerParents loads the user→manager edges as a map for the cycle walk.
func managerParents(db *gorm.DB) (map[uint]uint, error) {
	var users []models.User
	err := db.Select("id", "manager_id").Where("manager_id IS NOT NULL").Find(&users).Error
	if err != nil {
		return nil, FromStoreError(err)
	}

	parents := make(map[uint]uint, len(users))
	for _, u := range users {
		if u.ManagerID != nil {
			parents[u.ID] = *u.ManagerID
		}
	}
	return parents, nil
}
