package models

import (
	"sort"
	"strings"
	"time"
)

// Collection names, matching the layout the mobile client writes.
const (
	UsersCollection       = "users"
	CouplesCollection     = "couples"
	ChatsCollection       = "chats"
	CoupleCodesCollection = "coupleCodes"

	PersonalJournalsCollection = "personalJournals"
	CheckInsCollection         = "check_ins"
	MemoriesCollection         = "memories"
	SharedJournalsCollection   = "sharedJournals"
	ActivityCollection         = "rhm_actions"
	MessagesCollection         = "messages"
	TypingStatusCollection     = "typingStatus"
	CodeMembersCollection      = "members"
)

// User represents a user profile document
type User struct {
	ID              string `json:"id"`
	CoupleID        string `json:"coupleId,omitempty"`
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
	CoupleCode      string `json:"coupleCode,omitempty"`
	FCMToken        string `json:"fcmToken,omitempty"`
}

// Couple represents a pair of users
type Couple struct {
	ID                string   `json:"id"`
	User1ID           string   `json:"user1Id"`
	User2ID           string   `json:"user2Id"`
	DisconnectedUsers []string `json:"disconnectedUsers,omitempty"`
	Teardown          bool     `json:"teardown,omitempty"`
	Version           int64    `json:"-"`
}

// PartnerOf returns the other member of the couple
func (c *Couple) PartnerOf(userID string) string {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// IsDisconnected reports whether userID has been flagged as gone
func (c *Couple) IsDisconnected(userID string) bool {
	for _, id := range c.DisconnectedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

// HasMembers reports whether both member ids are set
func (c *Couple) HasMembers() bool {
	return c.User1ID != "" && c.User2ID != ""
}

// CoupleCode is a pairing-code registry entry
type CoupleCode struct {
	Code   string `json:"code"`
	UserID string `json:"userId"`
}

// Activity is a scored relationship action
type Activity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Points    float64   `json:"points"`
}

// ChatID returns the direct-message thread id for two users
func ChatID(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return strings.Join(ids, "_")
}
