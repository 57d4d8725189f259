package realtime

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Events pushed to clients.
const (
	EventReceiveComment      = "ReceiveComment"
	EventRemoveComment       = "RemoveComment"
	EventReceiveNotification = "ReceiveNotification"
	EventNotificationsRead   = "NotificationsRead"
	EventError               = "Error"
)

// Actions a client may send.
const (
	ActionJoinPostGroup          = "JoinPostGroup"
	ActionLeavePostGroup         = "LeavePostGroup"
	ActionJoinNotificationGroup  = "JoinNotificationGroup"
	ActionLeaveNotificationGroup = "LeaveNotificationGroup"
)

const (
	postGroupPrefix = "post:"
	userGroupPrefix = "user:"
)

// Envelope is the frame written to every connection.
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Command is the frame a client sends to manage its memberships.
// Target is a post id for post groups and a user id for notification groups.
type Command struct {
	Action string `json:"action"`
	Target string `json:"target"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// PostGroup names the channel carrying comment events for one post.
func PostGroup(postID string) string {
	return postGroupPrefix + postID
}

// UserGroup names the personal notification channel of one user.
func UserGroup(userID uint) string {
	return userGroupPrefix + strconv.FormatUint(uint64(userID), 10)
}

func isUserGroup(group string) bool {
	return strings.HasPrefix(group, userGroupPrefix)
}

func encode(event string, payload any) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: payload})
}
