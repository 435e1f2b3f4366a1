package models

// explicit join model so the (title, genre) pair carries its own unique constraint;
// registered with SetupJoinTable, cascades come from Title.Genres
type GenreTitle struct {
	ID      int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID int64 `json:"title_id" gorm:"not null;uniqueIndex:idx_genre_title_pair"`
	GenreID int64 `json:"genre_id" gorm:"not null;uniqueIndex:idx_genre_title_pair;index"`
}

func (GenreTitle) TableName() string {
	return "genre_titles"
}
