package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"idbridge/models"
)

var ErrMissingUserID = errors.New("user record has no userid")

// GormStore 以 gorm 實作本地寫入，外部資料一律以 (外部 ID, 來源) 識別
type GormStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

var _ IStore = (*GormStore)(nil)

func NewGormStore(db *gorm.DB, logger *slog.Logger) *GormStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormStore{
		db:     db,
		logger: logger.With(slog.String("caller", "directory.GormStore")),
	}
}

// UpsertDepartments 不存在就新增，存在則覆寫名稱、上層與排序
func (s *GormStore) UpsertDepartments(ctx context.Context, source string, depts []Department) (int, error) {
	const op = "directory.GormStore.UpsertDepartments"

	count := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dept := range depts {
			err := tx.Transaction(func(sp *gorm.DB) error {
				return upsertDepartment(sp, source, dept)
			})
			if err != nil {
				s.logger.Error("Fail to upsert department",
					slog.String("source", source),
					slog.String("departmentID", dept.ExternalID),
					slog.Any("error", err),
				)
				continue
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to commit departments, source=%s, err=%w", op, source, err)
	}
	return count, nil
}

func upsertDepartment(tx *gorm.DB, source string, dept Department) error {
	var row models.Department
	result := tx.Where("external_id = ? AND source = ?", dept.ExternalID, source).Take(&row)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		row = models.Department{
			ExternalID: dept.ExternalID,
			Source:     source,
			Name:       dept.Name,
			ParentID:   dept.ParentID,
			Order:      dept.Order,
			IsActive:   true,
		}
		return tx.Create(&row).Error
	}

	return tx.Model(&row).Select("Name", "ParentID", "Order", "IsActive").Updates(models.Department{
		Name:     dept.Name,
		ParentID: dept.ParentID,
		Order:    dept.Order,
		IsActive: true,
	}).Error
}

// UpsertUsers 在單一交易中寫入整批成員，每位成員使用各自的 savepoint，
// 單筆失敗只回滾該成員。回傳成功筆數。
func (s *GormStore) UpsertUsers(ctx context.Context, source string, users []UserRecord) (int, error) {
	const op = "directory.GormStore.UpsertUsers"

	count := 0
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, user := range users {
			err := tx.Transaction(func(sp *gorm.DB) error {
				return upsertUser(sp, source, user)
			})
			if err != nil {
				s.logger.Error("Fail to upsert user",
					slog.String("source", source),
					slog.String("userID", user.UserID),
					slog.Any("error", err),
				)
				continue
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("[%s] Fail to commit user batch, source=%s, err=%w", op, source, err)
	}
	return count, nil
}

func upsertUser(tx *gorm.DB, source string, record UserRecord) error {
	if record.UserID == "" {
		return ErrMissingUserID
	}

	key := record.Key()
	var user models.User
	result := tx.Where("external_id = ? AND auth_source = ?", key, source).Take(&user)
	if result.Error != nil && !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return result.Error
	}

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		user = models.User{
			Username:   lo.CoalesceOrEmpty(record.Name, record.UserID),
			Email:      lo.CoalesceOrEmpty(record.Email, fmt.Sprintf("%s@%s.local", record.UserID, source)),
			Phone:      record.Mobile,
			Avatar:     record.Avatar,
			ExternalID: key,
			AuthSource: source,
			EmployeeID: record.UserID,
			Department: record.PrimaryDepartment(),
			JobTitle:   record.Title,
			IsVerified: true,
			IsActive:   true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
	} else {
		// 只覆寫遠端有值的欄位
		updates := map[string]any{"is_active": true}
		for column, value := range map[string]string{
			"username":    record.Name,
			"email":       record.Email,
			"phone":       record.Mobile,
			"avatar":      record.Avatar,
			"employee_id": record.UserID,
			"department":  record.PrimaryDepartment(),
			"job_title":   record.Title,
		} {
			if value != "" {
				updates[column] = value
			}
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
	}

	depts, err := resolveDepartments(tx, source, record)
	if err != nil {
		return err
	}
	if len(depts) == 0 {
		return tx.Model(&user).Association("Departments").Clear()
	}
	return tx.Model(&user).Association("Departments").Replace(depts)
}

// resolveDepartments 優先以部門外部 ID 對應，沒有時才以名稱對應
func resolveDepartments(tx *gorm.DB, source string, record UserRecord) ([]models.Department, error) {
	var depts []models.Department
	switch {
	case len(record.DeptIDs) > 0:
		if err := tx.Where("source = ? AND external_id IN ?", source, record.DeptIDs).Find(&depts).Error; err != nil {
			return nil, err
		}
	case len(record.DeptNames) > 0:
		if err := tx.Where("source = ? AND name IN ?", source, record.DeptNames).Find(&depts).Error; err != nil {
			return nil, err
		}
	}
	return depts, nil
}

// DepartmentNames 依傳入順序回傳名稱，本地不存在的部門略過
func (s *GormStore) DepartmentNames(ctx context.Context, source string, externalIDs []string) ([]string, error) {
	const op = "directory.GormStore.DepartmentNames"

	if len(externalIDs) == 0 {
		return nil, nil
	}

	var rows []models.Department
	if err := s.db.WithContext(ctx).
		Where("source = ? AND external_id IN ?", source, externalIDs).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("[%s] Fail to find departments, source=%s, err=%w", op, source, err)
	}

	byID := lo.SliceToMap(rows, func(d models.Department) (string, string) {
		return d.ExternalID, d.Name
	})
	names := make([]string, 0, len(externalIDs))
	for _, id := range externalIDs {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// DeactivateUsers 以 employee_id 停用離職成員，不刪除資料
func (s *GormStore) DeactivateUsers(ctx context.Context, source string, userIDs []string) (int, error) {
	const op = "directory.GormStore.DeactivateUsers"

	if len(userIDs) == 0 {
		return 0, nil
	}

	result := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("auth_source = ? AND employee_id IN ?", source, userIDs).
		Update("is_active", false)
	if result.Error != nil {
		return 0, fmt.Errorf("[%s] Fail to deactivate users, source=%s, err=%w", op, source, result.Error)
	}
	return int(result.RowsAffected), nil
}
