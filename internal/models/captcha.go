package models

// CaptchaChallenge carries the image source of one captcha challenge.
// The source is either an absolute URL, a data URI, or raw base64 bytes.
// It lives only for the duration of one resolution call.
type CaptchaChallenge struct {
	ImageSource string `json:"image_source"`
}
