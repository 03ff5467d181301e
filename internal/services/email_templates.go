package services

// passwordResetEmailHTML takes the reset link (twice), the expiry in
// minutes and the year.
const passwordResetEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Reset your password</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f8f9fa; margin: 0; padding: 20px; }
  .container { max-width: 500px; margin: auto; background: #ffffff; border: 1px solid #e9ecef; border-radius: 8px; overflow: hidden; }
  .header { background-color: #ff385c; color: white; padding: 20px; text-align: center; }
  .header h1 { margin: 0; font-size: 24px; }
  .content { padding: 30px; text-align: center; }
  .button { display: inline-block; background-color: #ff385c; color: #ffffff; padding: 12px 24px; border-radius: 5px; text-decoration: none; font-weight: bold; margin: 20px 0; }
  .footer { background-color: #f8f9fa; padding: 20px; text-align: center; font-size: 12px; color: #6c757d; }
</style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Reset your password</h1>
    </div>
    <div class="content">
      <p>We received a request to reset the password of your Rentmio account.</p>
      <a class="button" href="%s">Choose a new password</a>
      <p>Or paste this link into your browser: %s</p>
      <p>The link expires in %d minutes. If you did not ask for a reset, you can ignore this email.</p>
    </div>
    <div class="footer">
      © %d Rentmio. All rights reserved.
    </div>
  </div>
</body>
</html>`

// newConversationEmailHTML takes the sender name, the listing title and the year.
const newConversationEmailHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<title>New conversation</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif; line-height: 1.6; color: #333; background-color: #f8f9fa; margin: 0; padding: 20px; }
  .container { max-width: 500px; margin: auto; background: #ffffff; border: 1px solid #e9ecef; border-radius: 8px; padding: 30px; }
  .footer { padding-top: 20px; text-align: center; font-size: 12px; color: #6c757d; }
</style>
</head>
<body>
  <div class="container">
    <p><strong>%s</strong> started a conversation with you about <strong>%s</strong>.</p>
    <p>Open Rentmio to reply.</p>
    <div class="footer">© %d Rentmio. All rights reserved.</div>
  </div>
</body>
</html>`
