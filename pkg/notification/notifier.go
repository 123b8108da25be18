package notification

// NoticeType identifies a kind of notice (e.g. "user_welcome").
type NoticeType string

// NotificationSystem identifies a delivery channel.
type NotificationSystem string

const (
	EmailSystem NotificationSystem = "email"

	UserWelcomeNotice NoticeType = "user_welcome"
	UserUpdatedNotice NoticeType = "user_updated"
)

// NoticeTemplate holds the renderable content for a notice.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

// NotificationData is the per-send payload.
type NotificationData struct {
	To      string            // Recipient identifier (e.g. email address)
	Subject string            // Optional subject override
	Body    string            // Pre-rendered body, when no template applies
	Data    map[string]string // Template data
}

// Notifier delivers a notice over one system.
type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
