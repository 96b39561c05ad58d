package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/vishwajeetguru/smart-truck-manager/Models"
)

func OTPMessage(to, code string, ttl time.Duration) Models.EmailMessage {
	return Models.EmailMessage{
		To:      []string{to},
		Subject: "Your Smart Truck Manager login code",
		Body: fmt.Sprintf("Your one-time code is %s.\r\nIt expires in %d minutes.\r\n",
			code, int(ttl.Minutes())),
	}
}

func NoticeDigest(profile Models.Profile, notices []Models.Notice) Models.EmailMessage {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\r\n\r\nReminders for today:\r\n", profile.DisplayName())
	for _, n := range notices {
		fmt.Fprintf(&b, "- %s\r\n", n.Content)
	}
	return Models.EmailMessage{
		To:      []string{profile.Email},
		Subject: fmt.Sprintf("%d reminder(s) for today", len(notices)),
		Body:    b.String(),
	}
}

func TrialReminder(profile Models.Profile) Models.EmailMessage {
	expires := ""
	if profile.TrialExpiresAt != nil {
		expires = profile.TrialExpiresAt.Format("02 Jan 2006 15:04")
	}
	return Models.EmailMessage{
		To:      []string{profile.Email},
		Subject: "Your Smart Truck Manager trial is ending",
		Body: fmt.Sprintf("Hello %s,\r\n\r\nYour free trial ends on %s. Contact us to keep your fleet records active.\r\n",
			profile.DisplayName(), expires),
	}
}
