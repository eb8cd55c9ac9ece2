package models

// Student represents an enrolled student record.
type Student struct {
	ID        int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName string `gorm:"size:255;not null" json:"first_name"`
	LastName  string `gorm:"size:255;not null" json:"last_name"`
}

// TableName pins the table name used by raw statements.
func (Student) TableName() string {
	return "students"
}
