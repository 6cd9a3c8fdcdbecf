package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	rediscommon "pmd-directory/common/redis"

	"github.com/google/uuid"
)

// 目录变更事件类型
const (
	EventEmployeeUpserted = "employee.upserted"
	EventEmployeeDeleted  = "employee.deleted"
	EventEmployeeApproved = "employee.approved"
	EventOfficerUpserted  = "officer.upserted"
	EventOfficersReplaced = "officers.replaced"
	EventTaxonomyChanged  = "taxonomy.changed"
	EventDirectoryRefresh = "directory.refresh"
)

var knownEvents = map[string]bool{
	EventEmployeeUpserted: true,
	EventEmployeeDeleted:  true,
	EventEmployeeApproved: true,
	EventOfficerUpserted:  true,
	EventOfficersReplaced: true,
	EventTaxonomyChanged:  true,
	EventDirectoryRefresh: true,
}

// ChangeEvent 目录变更事件
type ChangeEvent struct {
	EventID   string `json:"event_id"`
	EventType string `json:"event_type"`
	KGID      string `json:"kgid,omitempty"`
	AGID      string `json:"agid,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewChangeEvent stamps a fresh id and timestamp.
func NewChangeEvent(eventType string) ChangeEvent {
	return ChangeEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().Unix(),
	}
}

// Known reports whether the event type is one this service reacts to.
func (e ChangeEvent) Known() bool {
	return knownEvents[e.EventType]
}

// AffectsTaxonomy is true for events that require a taxonomy refresh.
func (e ChangeEvent) AffectsTaxonomy() bool {
	return e.EventType == EventTaxonomyChanged || e.EventType == EventDirectoryRefresh
}

// AffectsRecords is true for events that require a record reload.
func (e ChangeEvent) AffectsRecords() bool {
	return e.Known() && e.EventType != EventTaxonomyChanged
}

// Handler reacts to one change event.
type Handler interface {
	HandleChange(ctx context.Context, event ChangeEvent) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event ChangeEvent) error

func (f HandlerFunc) HandleChange(ctx context.Context, event ChangeEvent) error {
	return f(ctx, event)
}

// ParsePayload decodes a JSON event (MQTT payload or stream data field).
func ParsePayload(payload []byte) (*ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	if event.EventType == "" {
		return nil, fmt.Errorf("invalid event: missing event_type")
	}
	return &event, nil
}

// parseStreamEvent 优先解析 data 字段（JSON），否则直接从 Values 取字段
func parseStreamEvent(msg rediscommon.StreamMessage) (*ChangeEvent, error) {
	if dataStr, ok := msg.Values["data"].(string); ok {
		if event, err := ParsePayload([]byte(dataStr)); err == nil {
			return event, nil
		}
	}

	event := &ChangeEvent{}
	if v, ok := msg.Values["event_id"].(string); ok {
		event.EventID = v
	}
	if v, ok := msg.Values["event_type"].(string); ok {
		event.EventType = v
	}
	if v, ok := msg.Values["kgid"].(string); ok {
		event.KGID = v
	}
	if v, ok := msg.Values["agid"].(string); ok {
		event.AGID = v
	}
	if v, ok := msg.Values["timestamp"].(string); ok {
		event.Timestamp, _ = strconv.ParseInt(v, 10, 64)
	}

	if event.EventType == "" {
		return nil, fmt.Errorf("invalid event: missing event_type")
	}
	return event, nil
}
