package types

// ============================================================================
//                              Event - 发现事件
// ============================================================================

// EventType 发现事件类型
type EventType int

const (
	// EventAdded 服务出现（已完成解析）
	EventAdded EventType = iota

	// EventRemoved 服务消失
	EventRemoved
)

// String 返回事件类型的字符串表示
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event 发现事件
//
// Added 事件携带完整解析后的服务信息；
// Removed 事件只保证 Instance/Service/Domain 可用。
type Event struct {
	// Type 事件类型
	Type EventType

	// Service 涉及的服务
	Service Service
}

// NewEvent 创建事件
func NewEvent(t EventType, svc Service) Event {
	return Event{Type: t, Service: svc}
}
