package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderNotificationEmail generates branded HTML for a notification email.
// The title is shown in the header banner; body is plain text that gets
// HTML-escaped with newlines turned into <br> tags.
func RenderNotificationEmail(title, body string) string {
	htmlBody := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	safeTitle := html.EscapeString(title)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Helvetica Neue', Arial, sans-serif; margin: 0; padding: 0; background-color: #fff8f1; }
    .container { max-width: 560px; margin: 0 auto; background-color: #ffffff; border-radius: 12px; }
    .header { background: #ff7a45; padding: 32px 24px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; }
    .content { padding: 32px 24px; color: #333; line-height: 1.6; font-size: 15px; }
    .footer { padding: 24px; text-align: center; color: #999; font-size: 12px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>You are receiving this because you use DineBuddies. Manage notifications in the app.</p>
    </div>
  </div>
</body>
</html>`, safeTitle, safeTitle, htmlBody)
}
