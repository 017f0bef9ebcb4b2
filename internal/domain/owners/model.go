package owners

import "time"

type Section struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Handle    string    `gorm:"size:45;not null;uniqueIndex:idx_sections_handle" json:"handle"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Entry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SectionID uint      `gorm:"not null;index" json:"section_id"`
	Slug      string    `gorm:"size:255" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Asset struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"size:255;not null" json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Site struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	URL       string    `gorm:"column:url;size:255;not null" json:"url"`
	Language  string    `gorm:"size:12;not null" json:"language"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"size:100;not null;uniqueIndex:idx_users_username" json:"username"`
	Email    string `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`

	// Credentials are managed through SetCredentials only.
	Password *string `json:"-"`
	Role     string  `gorm:"size:20;not null;default:'editor'" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserGroup struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Handle    string    `gorm:"size:100;not null;uniqueIndex:idx_usergroups_handle" json:"handle"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Section) TableName() string   { return "sections" }
func (Entry) TableName() string     { return "entries" }
func (Asset) TableName() string     { return "assets" }
func (Site) TableName() string      { return "sites" }
func (User) TableName() string      { return "users" }
func (UserGroup) TableName() string { return "usergroups" }

// Models lists the owner rows for migration.
func Models() []any {
	return []any{&Section{}, &Entry{}, &Asset{}, &Site{}, &User{}, &UserGroup{}}
}
