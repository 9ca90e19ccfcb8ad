package scholarhub

import "embed"

// EmailFS holds the email template groups, one directory per notification kind.
//
//go:embed templates/emails
var EmailFS embed.FS
