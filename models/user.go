package models

// User 代表本地使用者
// 由第三方登入或通訊錄同步建立的使用者以 (ExternalID, AuthSource) 識別
type User struct {
	Base

	Username   string `gorm:"type:varchar(255);not null"`
	Email      string `gorm:"type:varchar(255);not null;uniqueIndex:idx_user_email,where:deleted_at IS NULL"`
	Phone      string `gorm:"type:varchar(20)"`
	Avatar     string `gorm:"type:text"`
	ExternalID string `gorm:"type:varchar(255);uniqueIndex:idx_user_external_id_auth_source,where:deleted_at IS NULL AND external_id <> ''"`
	AuthSource string `gorm:"type:varchar(50);uniqueIndex:idx_user_external_id_auth_source,where:deleted_at IS NULL AND external_id <> ''"`
	EmployeeID string `gorm:"type:varchar(100);index"`
	// Department 是主要部門名稱
	Department string `gorm:"type:varchar(100)"`
	JobTitle   string `gorm:"type:varchar(100)"`
	IsVerified bool   `gorm:"not null;default:false"`
	IsActive   bool   `gorm:"not null;default:true"`
	IsAdmin    bool   `gorm:"not null;default:false"`

	Departments []Department `gorm:"many2many:user_departments"`
}
