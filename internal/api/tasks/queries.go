package tasks

import (
	"taskfyer/internal/domain/tasks"

	"gorm.io/gorm"
)

func userTasksQuery(db *gorm.DB, userID uint) *gorm.DB {
	return db.Model(&tasks.Task{}).Where("user_id = ?", userID)
}
