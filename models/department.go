package models

// Department 代表從第三方平台同步的部門
// 以 (ExternalID, Source) 識別，ParentID 存放上層部門的外部 ID，根部門的直屬子部門為 nil
type Department struct {
	Base

	ExternalID string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_department_external_id_source,where:deleted_at IS NULL"`
	Source     string  `gorm:"type:varchar(50);not null;uniqueIndex:idx_department_external_id_source,where:deleted_at IS NULL"`
	Name       string  `gorm:"type:varchar(100);not null;index"`
	ParentID   *string `gorm:"type:varchar(100)"`
	Order      int     `gorm:"not null;default:0"`
	IsActive   bool    `gorm:"not null;default:true"`
}
