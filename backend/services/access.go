package services

import "lectoria/backend/models"

// AvailableTests returns every test the user can currently open: entry
// level tests, tests without prerequisite edges, and tests unlocked for
// the user, ordered by level then id.
func (ps *ProgressionService) AvailableTests(userID uint) ([]models.ReadingTest, error) {
	var unlockedIDs []uint
	if err := ps.DB.Model(&models.UnlockedTest{}).
		Where("user_id = ? AND active = ?", userID, true).
		Pluck("test_id", &unlockedIDs).Error; err != nil {
		return nil, err
	}

	var gatedIDs []uint
	if err := ps.DB.Model(&models.TestPrerequisite{}).
		Distinct("test_id").
		Pluck("test_id", &gatedIDs).Error; err != nil {
		return nil, err
	}

	var tests []models.ReadingTest
	query := ps.DB.Order("level, id")
	switch {
	case len(gatedIDs) == 0:
		// No test is gated, everything is open.
	case len(unlockedIDs) > 0:
		query = query.Where("level = 1 OR id NOT IN ? OR id IN ?", gatedIDs, unlockedIDs)
	default:
		query = query.Where("level = 1 OR id NOT IN ?", gatedIDs)
	}
	if err := query.Find(&tests).Error; err != nil {
		return nil, err
	}

	return tests, nil
}

// CanAccessTest reports whether a test is open for the user.
func (ps *ProgressionService) CanAccessTest(userID, testID uint) (bool, error) {
	tests, err := ps.AvailableTests(userID)
	if err != nil {
		return false, err
	}
	for _, t := range tests {
		if t.ID == testID {
			return true, nil
		}
	}
	return false, nil
}
