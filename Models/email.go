package Models

// EmailMessage represents an email to be sent
type EmailMessage struct {
	To      []string
	CC      []string
	Subject string
	Body    string
	IsHTML  bool
}
