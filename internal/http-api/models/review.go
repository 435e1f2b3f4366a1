package models

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

type Review struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	TitleID  int64     `json:"title_id" gorm:"not null;uniqueIndex:idx_review_title_author"`
	AuthorID string    `json:"author_id" gorm:"type:uuid;not null;uniqueIndex:idx_review_title_author;index"`
	Text     string    `json:"text" gorm:"type:text;not null"`
	Score    int       `json:"score" gorm:"type:smallint;not null;check:chk_review_score,score >= 1 AND score <= 10"`
	PubDate  time.Time `json:"pub_date" gorm:"not null;index"`

	// Associations
	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
	Author User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}

func (r *Review) OwnerID() string {
	return r.AuthorID
}
