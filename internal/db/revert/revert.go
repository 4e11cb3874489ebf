// Package revert implements the optimistic update pattern as a reusable
// helper: mutate the in-memory record, try to persist it, and restore the
// pre-image if the database rejects the write. Callers keep handing out the
// same record to their views, so a rejected write must not leave phantom
// changes behind.
package revert

import "gorm.io/gorm"

// Save applies mutate to model, persists it, and restores the pre-image on
// failure. The snapshot is a shallow copy; models persisted through this
// helper should hold value fields only.
func Save[T any](db *gorm.DB, model *T, mutate func(*T)) error {
	pre := *model

	mutate(model)

	if err := db.Save(model).Error; err != nil {
		*model = pre
		return err
	}

	return nil
}

// Updates applies a column update and restores the in-memory pre-image on
// failure. Unlike Save it writes only the given columns.
func Updates[T any](db *gorm.DB, model *T, columns map[string]interface{}, mutate func(*T)) error {
	pre := *model

	mutate(model)

	if err := db.Model(model).Updates(columns).Error; err != nil {
		*model = pre
		return err
	}

	return nil
}
