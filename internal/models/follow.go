package models

import "time"

// Follow is a directed edge: FollowerID follows FollowingID.
// A follower may hold at most one edge per target.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	FollowingID uint      `json:"following_id" gorm:"not null;index;uniqueIndex:idx_follow_pair"`
	CreatedAt   time.Time `json:"created_at"`
}
