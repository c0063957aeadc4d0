package database

import "blizz/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Highlight{},
		&models.Appreciation{},
		&models.HighlightComment{},
		&models.HighlightView{},
		&models.HighlightShare{},
		&models.Subscription{},
	}
}
