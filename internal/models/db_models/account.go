package db_models

// Account is a buyer, or an admin who can read the feedback report.
type Account struct {
	BaseModel
	Name         string
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"not null;default:buyer"`

	Projects []Project `gorm:"foreignKey:OwnerID"`
}
