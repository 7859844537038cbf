package model

import (
	"encoding/json"
	"time"
)

// Resume is one scored resume inside a screening session. Records are
// append-only: created once during a screen call, never edited, removed
// only when the owning session is destroyed.
// MatchedSkills is stored as a JSON array of strings for portability.
type Resume struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	SessionID     string    `gorm:"size:36;not null;index" json:"session_id"`
	Position      int       `gorm:"not null" json:"-"`
	Filename      string    `gorm:"size:256;not null" json:"filename"`
	StoredName    string    `gorm:"size:300;not null" json:"-"`
	RawText       string    `gorm:"type:longtext" json:"raw_text"`
	MatchScore    int       `gorm:"not null" json:"match_score"`
	MatchedSkills string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

// MatchedSkillList returns the parsed matched skills; empty on parse error.
func (r *Resume) MatchedSkillList() []string {
	if r.MatchedSkills == "" {
		return nil
	}
	var v []string
	_ = json.Unmarshal([]byte(r.MatchedSkills), &v)
	return v
}

// SetMatchedSkills stores the matched skills as JSON.
func (r *Resume) SetMatchedSkills(skills []string) {
	if len(skills) == 0 {
		r.MatchedSkills = "[]"
		return
	}
	b, _ := json.Marshal(skills)
	r.MatchedSkills = string(b)
}
