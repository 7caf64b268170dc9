package mailer

import (
	"fmt"
	"time"
)

// SignupOTPMessage renders the registration code mail.
func SignupOTPMessage(code string, ttl time.Duration) (string, string) {
	return "Your OTP Code",
		fmt.Sprintf("<p>Your OTP code is <b>%s</b>. It is valid for %d minutes.</p>",
			code, int(ttl.Minutes()))
}

// ResetOTPMessage renders the password-reset code mail.
func ResetOTPMessage(code string, ttl time.Duration) (string, string) {
	return "Your Password Reset OTP",
		fmt.Sprintf(
			"<h1>Password Reset OTP</h1><p>Your One-Time Password (OTP) is:</p><h2>%s</h2><p>This OTP will expire in %d minutes.</p>",
			code, int(ttl.Minutes()))
}
