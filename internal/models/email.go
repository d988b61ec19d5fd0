package models

// EmailPayload contains the minimal information required to send an email.
type EmailPayload struct {
	To       string
	Subject  string
	Body     string
	HTMLBody string
	CC       []string
	BCC      []string
}
