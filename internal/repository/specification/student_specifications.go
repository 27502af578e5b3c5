package specification

import "gorm.io/gorm"

// ByRollNo filters students by roll number
type ByRollNo struct {
	RollNo string
}

func (s ByRollNo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("roll_no = ?", s.RollNo)
}
