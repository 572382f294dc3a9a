package email

import "fmt"

const signature = "\n\nThe MintVerse team"

// Verification builds the account verification email.
func Verification(to, name, link string) Message {
	return Message{
		To:      to,
		Subject: "Verify your MintVerse account",
		Body: fmt.Sprintf(
			"Hi %s,\n\nConfirm your email address by opening the link below:\n%s\n\nThe link expires in 24 hours.%s",
			name, link, signature,
		),
	}
}

// RequestDecision tells a user an administrator approved or rejected one of
// their requests. what is a human label like "wallet deposit".
func RequestDecision(to, name, what, ref, decision string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s was %s", what, decision),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour %s (reference %s) has been %s by an administrator.%s",
			name, what, ref, decision, signature,
		),
	}
}
