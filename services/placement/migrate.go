package placement

import "gorm.io/gorm"

// AutoMigrate creates or updates every table the engine reads and writes.
// Production deploys run the versioned migrations instead; this is for
// embedded use and test databases.
func AutoMigrate(orm *gorm.DB) error {
	return orm.AutoMigrate(
		&companyModel{},
		&studentModel{},
		&jobModel{},
		&applicationModel{},
		&interviewModel{},
		&invitationModel{},
		&tokenEntryModel{},
		&notificationModel{},
		&auditModel{},
	)
}
