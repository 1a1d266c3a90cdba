package notify

import (
	"fmt"
	"strings"
)

// callbackData encodes a button press as "<action>:<reminderID>". Reminder
// ids contain colons (08:00) so only the first one separates.
func callbackData(actionID, reminderID string) string {
	return actionID + ":" + reminderID
}

func parseCallbackData(data string) (actionID, reminderID string, err error) {
	actionID, reminderID, ok := strings.Cut(data, ":")
	if !ok || actionID == "" || reminderID == "" {
		return "", "", fmt.Errorf("malformed callback data %q", data)
	}
	return actionID, reminderID, nil
}
