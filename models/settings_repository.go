package models

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	minUsernameLen = 3
	minPasswordLen = 6
)

type SettingsRepository struct {
	db         *gorm.DB
	bcryptCost int
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db, bcryptCost: bcrypt.DefaultCost}
}

// WithBcryptCost overrides the hashing cost, mostly to keep tests fast.
func (r *SettingsRepository) WithBcryptCost(cost int) *SettingsRepository {
	r.bcryptCost = cost
	return r
}

// GetShopSettings returns the saved settings or the defaults when none were saved.
func (r *SettingsRepository) GetShopSettings(ctx context.Context) (ShopSettings, error) {
	var s ShopSettings
	err := r.db.WithContext(ctx).Where("id = ?", shopSettingsID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return defaultShopSettings(), nil
	}
	if err != nil {
		return ShopSettings{}, storageErr("get shop settings", err)
	}
	return s, nil
}

func (r *SettingsRepository) SaveShopSettings(ctx context.Context, u ShopSettingsUpdate) (ShopSettings, error) {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		u.Name = nil
	}
	var saved ShopSettings
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", shopSettingsID).First(&saved).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			saved = defaultShopSettings()
		} else if err != nil {
			return err
		}
		u.apply(&saved)
		return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&saved).Error
	})
	if err != nil {
		return ShopSettings{}, storageErr("save shop settings", err)
	}
	return saved, nil
}

func (r *SettingsRepository) GetAllAdmins(ctx context.Context) ([]Admin, error) {
	admins := []Admin{}
	if err := r.db.WithContext(ctx).Order("username").Find(&admins).Error; err != nil {
		return nil, storageErr("list admins", err)
	}
	return admins, nil
}

func (r *SettingsRepository) CreateAdmin(ctx context.Context, username, password string) (*Admin, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLen || len(password) < minPasswordLen {
		return nil, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), r.bcryptCost)
	if err != nil {
		return nil, err
	}
	admin := &Admin{ID: uuid.NewString(), Username: username, PasswordHash: string(hash)}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&Admin{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ErrDuplicateUsername
		}
		return tx.Create(admin).Error
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateUsername) || isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, storageErr("create admin", err)
	}
	return admin, nil
}

// DeleteAdmin refuses to remove the only remaining account.
func (r *SettingsRepository) DeleteAdmin(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin Admin
		if err := tx.Where("id = ?", id).First(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAdminNotFound
			}
			return err
		}
		var count int64
		if err := tx.Model(&Admin{}).Count(&count).Error; err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastAdmin
		}
		return tx.Delete(&admin).Error
	})
	if err != nil {
		if errors.Is(err, ErrAdminNotFound) || errors.Is(err, ErrLastAdmin) {
			return err
		}
		return storageErr("delete admin", err)
	}
	return nil
}

func (r *SettingsRepository) findAdmin(ctx context.Context, username string) (*Admin, error) {
	var admin Admin
	err := r.db.WithContext(ctx).Where("username = ?", strings.TrimSpace(username)).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get admin", err)
	}
	return &admin, nil
}

// VerifyAdmin reports whether the username exists and the password matches.
func (r *SettingsRepository) VerifyAdmin(ctx context.Context, username, password string) (bool, error) {
	admin, err := r.findAdmin(ctx, username)
	if err != nil || admin == nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) == nil, nil
}

// ChangePassword checks the current password and stores the new hash in one
// transaction. The update only applies to the hash that was checked.
func (r *SettingsRepository) ChangePassword(ctx context.Context, username, current, next string) error {
	if len(next) < minPasswordLen {
		return ErrInvalidCredentials
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var admin Admin
		if err := tx.Where("username = ?", strings.TrimSpace(username)).First(&admin).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidCredentials
			}
			return err
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(current)) != nil {
			return ErrInvalidCredentials
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(next), r.bcryptCost)
		if err != nil {
			return err
		}
		res := tx.Model(&Admin{}).
			Where("id = ? AND password_hash = ?", admin.ID, admin.PasswordHash).
			Update("password_hash", string(hash))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidCredentials
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return err
		}
		return storageErr("change password", err)
	}
	return nil
}

// EnsureDefaultAdmin creates the given account when no admin exists yet.
// It reports whether an account was created.
func (r *SettingsRepository) EnsureDefaultAdmin(ctx context.Context, username, password string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&Admin{}).Count(&count).Error; err != nil {
		return false, storageErr("count admins", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := r.CreateAdmin(ctx, username, password); err != nil {
		return false, err
	}
	return true, nil
}

// ClearAllData removes orders, catalog and shop settings. Admin accounts are kept.
func (r *SettingsRepository) ClearAllData(ctx context.Context) error {
	err := r.db.WithContext(ctx).Transaction(clearTables)
	if err != nil {
		return storageErr("clear data", err)
	}
	return nil
}

// ResetToDefaults clears all data and reseeds data as the catalog.
func (r *SettingsRepository) ResetToDefaults(ctx context.Context, data SeedData) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearTables(tx); err != nil {
			return err
		}
		return insertCatalog(tx, data)
	})
	if err != nil {
		return storageErr("reset to defaults", err)
	}
	return nil
}

func clearTables(tx *gorm.DB) error {
	all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{&OrderItem{}, &Order{}, &Product{}, &Category{}, &ShopSettings{}} {
		if err := all.Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
