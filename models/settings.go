package models

import "time"

const (
	shopSettingsID  = 1
	DefaultShopName = "Juice Bar POS"
)

// ShopSettings is the single row of shop metadata printed on receipts.
type ShopSettings struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Logo      string    `json:"logo"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *ShopSettings) TableName() string {
	return "shop_settings"
}

func defaultShopSettings() ShopSettings {
	return ShopSettings{ID: shopSettingsID, Name: DefaultShopName}
}

// ShopSettingsUpdate holds the fields of a partial settings save.
type ShopSettingsUpdate struct {
	Name    *string
	Logo    *string
	Address *string
	Phone   *string
}

func (u ShopSettingsUpdate) apply(s *ShopSettings) {
	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.Logo != nil {
		s.Logo = *u.Logo
	}
	if u.Address != nil {
		s.Address = *u.Address
	}
	if u.Phone != nil {
		s.Phone = *u.Phone
	}
}

// Admin is a back-office account. PasswordHash is a bcrypt hash.
type Admin struct {
	ID           string    `gorm:"primaryKey;size:64" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Admin) TableName() string {
	return "admins"
}
