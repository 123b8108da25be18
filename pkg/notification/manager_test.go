package notification

import (
	"testing"
)

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager()
	if nm == nil {
		t.Fatal("NewNotificationManager returned nil")
	}
	if nm.notifiers == nil {
		t.Error("notifiers map not initialized")
	}
	if nm.notificationRegistry == nil {
		t.Error("notificationRegistry map not initialized")
	}
}

func TestRegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	mockNotifier := &MockNotifier{}

	nm.RegisterNotifier(EmailSystem, mockNotifier)
	if n, exists := nm.notifiers[EmailSystem]; !exists {
		t.Error("Notifier not registered")
	} else if n != mockNotifier {
		t.Error("Wrong notifier registered")
	}

	newMockNotifier := &MockNotifier{}
	nm.RegisterNotifier(EmailSystem, newMockNotifier)
	if n := nm.notifiers[EmailSystem]; n != newMockNotifier {
		t.Error("Notifier not overwritten")
	}
}

func TestRegisterNotification(t *testing.T) {
	nm := NewNotificationManager()

	tests := []struct {
		name        string
		noticeType  NoticeType
		system      NotificationSystem
		template    NoticeTemplate
		shouldError bool
	}{
		{
			name:        "Valid registration with both Text and Html",
			noticeType:  UserWelcomeNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Welcome", Text: "Welcome {{.username}}", Html: "<p>Welcome {{.username}}</p>"},
			shouldError: false,
		},
		{
			name:        "Valid registration with Text only",
			noticeType:  UserWelcomeNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Welcome", Text: "Welcome"},
			shouldError: false,
		},
		{
			name:        "Empty notice type",
			noticeType:  "",
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Welcome", Text: "Welcome"},
			shouldError: true,
		},
		{
			name:        "Empty system",
			noticeType:  UserWelcomeNotice,
			system:      "",
			template:    NoticeTemplate{Subject: "Welcome", Text: "Welcome"},
			shouldError: true,
		},
		{
			name:        "Empty template",
			noticeType:  UserWelcomeNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Welcome"},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := nm.RegisterNotification(tt.noticeType, tt.system, tt.template)
			if tt.shouldError && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSend(t *testing.T) {
	nm := NewNotificationManager()
	mockNotifier := &MockNotifier{}
	nm.RegisterNotifier(EmailSystem, mockNotifier)

	err := nm.RegisterNotification(UserWelcomeNotice, EmailSystem,
		NoticeTemplate{Subject: "Welcome", Text: "Welcome aboard"})
	if err != nil {
		t.Fatalf("Failed to register notification: %v", err)
	}

	err = nm.Send(UserWelcomeNotice, EmailSystem, NotificationData{To: "new@example.com"})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if len(mockNotifier.SentNotifications) != 1 {
		t.Fatalf("Expected 1 sent notification, got %d", len(mockNotifier.SentNotifications))
	}
	if mockNotifier.SentNotifications[0].To != "new@example.com" {
		t.Errorf("Wrong recipient: %s", mockNotifier.SentNotifications[0].To)
	}

	// Unregistered type and system both fail.
	if err := nm.Send(UserUpdatedNotice, EmailSystem, NotificationData{To: "x@example.com"}); err == nil {
		t.Error("Expected error for unregistered notice type")
	}
	if err := nm.Send(UserWelcomeNotice, "sms", NotificationData{To: "x@example.com"}); err == nil {
		t.Error("Expected error for unregistered system")
	}
}
