// Package appfs embeds the static assets shipped with the binaries.
package appfs

import "embed"

// FS holds the SQL migrations, the email templates and the password blocklist.
//
//go:embed migrations/*.sql templates/email/* assets/*.gz
var FS embed.FS
