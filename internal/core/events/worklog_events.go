package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	WorkEntryCreated   = "work_entry.created"
	WorkEntryUpdated   = "work_entry.updated"
	WorkEntryDeleted   = "work_entry.deleted"
	AttachmentUploaded = "attachment.uploaded"
	AttachmentDeleted  = "attachment.deleted"
	SettingsUpdated    = "settings.updated"
)

// All lists every event type the application publishes.
func All() []string {
	return []string{
		WorkEntryCreated,
		WorkEntryUpdated,
		WorkEntryDeleted,
		AttachmentUploaded,
		AttachmentDeleted,
		SettingsUpdated,
	}
}

func New(eventType string, actorID int64, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = make(map[string]interface{})
	}
	data["actor_id"] = actorID
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func NewWorkEntryEvent(eventType string, actorID, entryID, departmentID int64) BaseEvent {
	return New(eventType, actorID, map[string]interface{}{
		"work_entry_id": entryID,
		"department_id": departmentID,
	})
}

func NewAttachmentEvent(eventType string, actorID, entryID, attachmentID int64) BaseEvent {
	return New(eventType, actorID, map[string]interface{}{
		"work_entry_id": entryID,
		"attachment_id": attachmentID,
	})
}

func NewSettingsUpdatedEvent(actorID int64, keys []string) BaseEvent {
	return New(SettingsUpdated, actorID, map[string]interface{}{
		"keys": keys,
	})
}
