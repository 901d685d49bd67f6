package models

import "regexp"

type Category struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:15;uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"size:15;uniqueIndex;not null"`
}

func (Category) TableName() string {
	return "categories"
}

type Genre struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:15;uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"size:15;uniqueIndex;not null"`
}

func (Genre) TableName() string {
	return "genres"
}

// explicit join model, the table has its own id
type TitleGenre struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"uniqueIndex:title_genres_pair;not null"`
	GenreID int64 `json:"genre_id" gorm:"uniqueIndex:title_genres_pair;index;not null"`
}

func (TitleGenre) TableName() string {
	return "title_genres"
}

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s is made of letters, digits, hyphens and underscores.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
